package dateutil

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval has positive length.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i. Equal ranges contain each other.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Overlaps reports whether the two intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Touches reports whether one interval ends exactly where the other starts.
func (i Interval) Touches(other Interval) bool {
	return i.End.Equal(other.Start) || other.End.Equal(i.Start)
}

// Union returns the smallest interval covering both.
func (i Interval) Union(other Interval) Interval {
	out := i
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Subtract removes cut from i and returns what remains, in chronological order.
func (i Interval) Subtract(cut Interval) []Interval {
	if !i.Overlaps(cut) {
		return []Interval{i}
	}
	var rest []Interval
	if i.Start.Before(cut.Start) {
		rest = append(rest, Interval{Start: i.Start, End: cut.Start})
	}
	if cut.End.Before(i.End) {
		rest = append(rest, Interval{Start: cut.End, End: i.End})
	}
	return rest
}
