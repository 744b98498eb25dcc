package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestIntervalPredicates(t *testing.T) {
	base := Interval{Start: clock(10, 0), End: clock(11, 0)}

	assert.True(t, base.Valid())
	assert.False(t, Interval{Start: clock(11, 0), End: clock(11, 0)}.Valid())

	inner := Interval{Start: clock(10, 30), End: clock(10, 45)}
	assert.True(t, base.Contains(inner))
	assert.False(t, inner.Contains(base))
	assert.True(t, base.Contains(base))

	partial := Interval{Start: clock(9, 0), End: clock(10, 30)}
	assert.True(t, base.Overlaps(partial))
	assert.False(t, base.Contains(partial))

	next := Interval{Start: clock(11, 0), End: clock(12, 0)}
	assert.False(t, base.Overlaps(next))
	assert.True(t, base.Touches(next))
	assert.True(t, next.Touches(base))

	gap := Interval{Start: clock(12, 0), End: clock(13, 0)}
	assert.False(t, base.Overlaps(gap))
	assert.False(t, base.Touches(gap))
}

func TestIntervalUnionAndSubtract(t *testing.T) {
	a := Interval{Start: clock(9, 0), End: clock(10, 30)}
	b := Interval{Start: clock(10, 0), End: clock(11, 0)}

	u := a.Union(b)
	assert.Equal(t, clock(9, 0), u.Start)
	assert.Equal(t, clock(11, 0), u.End)

	rest := a.Subtract(b)
	require.Len(t, rest, 1)
	assert.Equal(t, Interval{Start: clock(9, 0), End: clock(10, 0)}, rest[0])

	wide := Interval{Start: clock(8, 0), End: clock(12, 0)}
	split := wide.Subtract(b)
	require.Len(t, split, 2)
	assert.Equal(t, clock(10, 0), split[0].End)
	assert.Equal(t, clock(11, 0), split[1].Start)

	assert.Empty(t, b.Subtract(wide))
	assert.Equal(t, []Interval{a}, a.Subtract(Interval{Start: clock(13, 0), End: clock(14, 0)}))
}

func TestDateHelpers(t *testing.T) {
	morning := time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, morning.AddDate(0, 0, 1)))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOnly(evening))
	assert.Equal(t, "2024-03-05", DateKey(morning))

	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.True(t, SameDay(d, morning))

	_, err = ParseDate("05/03/2024")
	assert.Error(t, err)

	offset, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, offset)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), AtClock(evening, offset))
}

func TestCompareDaysIgnoresZone(t *testing.T) {
	eastern := time.FixedZone("EST", -5*60*60)
	lateEastern := time.Date(2024, 1, 10, 21, 0, 0, 0, eastern)
	midnightUTC := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, CompareDays(lateEastern, midnightUTC))
	assert.Equal(t, -1, CompareDays(midnightUTC, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, CompareDays(time.Date(2025, 1, 1, 0, 0, 0, 0, eastern), lateEastern))
}
