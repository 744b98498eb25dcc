package dto

import "github.com/noah-isme/workforce-api/internal/models"

// RecurrencePatternRequest is the wire form of a recurrence pattern. Dates are YYYY-MM-DD or RFC3339
// and are parsed once at the service boundary.
type RecurrencePatternRequest struct {
	Frequency   string   `json:"frequency"`
	StartDate   string   `json:"startDate"`
	Occurrences int      `json:"occurrences"`
	EndDate     string   `json:"endDate,omitempty"`
	Exceptions  []string `json:"exceptions,omitempty" validate:"omitempty,max=366"`
}

// ValidatePatternResponse reports whether a pattern can be expanded.
type ValidatePatternResponse struct {
	Valid       bool     `json:"valid"`
	Problems    []string `json:"problems,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ExpandPatternResponse lists the concrete occurrences of a pattern.
type ExpandPatternResponse struct {
	Description string                        `json:"description"`
	Occurrences []models.RecurrenceOccurrence `json:"occurrences"`
}

// ExceptionAction selects whether an exception date is added or removed.
type ExceptionAction string

const (
	ExceptionAdd    ExceptionAction = "add"
	ExceptionRemove ExceptionAction = "remove"
)

// ToggleExceptionRequest flags or unflags one date of a pattern.
type ToggleExceptionRequest struct {
	Pattern RecurrencePatternRequest `json:"pattern"`
	Date    string                   `json:"date" validate:"required"`
	Action  ExceptionAction          `json:"action" validate:"required,oneof=add remove"`
}

// ToggleExceptionResponse returns the updated pattern alongside its regenerated occurrences.
type ToggleExceptionResponse struct {
	Pattern     RecurrencePatternRequest      `json:"pattern"`
	Description string                        `json:"description"`
	Occurrences []models.RecurrenceOccurrence `json:"occurrences"`
}

// ExportRecurrenceRequest renders a pattern as a roster sheet.
type ExportRecurrenceRequest struct {
	Pattern RecurrencePatternRequest `json:"pattern"`
	Title   string                   `json:"title" validate:"omitempty,max=120"`
}

// ExportFormat names the supported roster sheet renderings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered document back to the handler.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
