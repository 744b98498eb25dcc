package models

import "time"

// Frequency is the step unit used to advance a recurrence anchor.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// RecurrencePattern describes a repeating series. Exceptions stay in the generated
// sequence and are only flagged.
type RecurrencePattern struct {
	Frequency   Frequency   `json:"frequency"`
	StartDate   time.Time   `json:"start_date"`
	Occurrences int         `json:"occurrences"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Exceptions  []time.Time `json:"exceptions,omitempty"`
}

// RecurrenceOccurrence is one concrete date produced from a pattern.
type RecurrenceOccurrence struct {
	Date        time.Time `json:"date"`
	Index       int       `json:"index"`
	IsException bool      `json:"is_exception"`
}
