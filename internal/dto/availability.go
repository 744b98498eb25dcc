package dto

import (
	"time"

	"github.com/noah-isme/workforce-api/internal/models"
)

// AvailabilityRequest describes a single or recurring block for one subject.
// StartTime and EndTime are wall-clock HH:MM; an end at or before the start crosses midnight.
type AvailabilityRequest struct {
	SubjectID   string                   `json:"subjectId" validate:"required"`
	SubjectType models.SubjectType       `json:"subjectType" validate:"required,oneof=STAFF RESOURCE LOCATION"`
	Kind        models.BlockKind         `json:"kind" validate:"required,oneof=AVAILABILITY SHIFT BOOKING"`
	Status      string                   `json:"status" validate:"required,max=32"`
	StartTime   string                   `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string                   `json:"endTime" validate:"required,datetime=15:04"`
	Label       *string                  `json:"label,omitempty" validate:"omitempty,max=120"`
	Pattern     RecurrencePatternRequest `json:"pattern"`
}

// CreateAvailabilityRequest applies a block after the caller has reviewed the conflict report.
// Confirm and Strategy must echo the recommendation whenever conflicts exist.
type CreateAvailabilityRequest struct {
	AvailabilityRequest
	Confirm  bool                      `json:"confirm"`
	Strategy models.ResolutionStrategy `json:"strategy" validate:"omitempty,oneof=none merge override"`
}

// ConflictView is one conflict with its user-facing explanation.
type ConflictView struct {
	ExistingBlock models.TimeBlock    `json:"existingBlock"`
	ConflictType  models.ConflictType `json:"conflictType"`
	Explanation   string              `json:"explanation"`
}

// OccurrenceConflicts groups the conflicts of one generated window.
type OccurrenceConflicts struct {
	Index       int            `json:"index"`
	Date        time.Time      `json:"date"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	IsException bool           `json:"isException"`
	Conflicts   []ConflictView `json:"conflicts"`
}

// ConflictReport is returned by the preview endpoint and attached to CONFLICT errors.
type ConflictReport struct {
	Description    string                    `json:"description"`
	Strategy       models.ResolutionStrategy `json:"strategy"`
	TotalConflicts int                       `json:"totalConflicts"`
	Occurrences    []OccurrenceConflicts     `json:"occurrences"`
}

// CreateAvailabilityResponse summarises what was written.
type CreateAvailabilityResponse struct {
	Strategy          models.ResolutionStrategy  `json:"strategy"`
	RecurrenceGroupID *string                    `json:"recurrenceGroupId,omitempty"`
	Created           []models.AvailabilityBlock `json:"created"`
	Updated           []models.AvailabilityBlock `json:"updated"`
	Removed           []string                   `json:"removed"`
	Report            ConflictReport             `json:"report"`
}

// ListAvailabilityQuery captures list filters from the query string.
type ListAvailabilityQuery struct {
	SubjectID string   `form:"subject_id"`
	Status    []string `form:"status"`
	From      string   `form:"from"`
	To        string   `form:"to"`
	Page      int      `form:"page" validate:"omitempty,min=1"`
	PageSize  int      `form:"page_size" validate:"omitempty,min=1,max=200"`
}
