package models

import "time"

// SubjectType identifies what an availability block belongs to.
type SubjectType string

const (
	SubjectStaff    SubjectType = "STAFF"
	SubjectResource SubjectType = "RESOURCE"
	SubjectLocation SubjectType = "LOCATION"
)

// BlockKind separates declared availability from rostered shifts and customer bookings.
type BlockKind string

const (
	BlockKindAvailability BlockKind = "AVAILABILITY"
	BlockKindShift        BlockKind = "SHIFT"
	BlockKindBooking      BlockKind = "BOOKING"
)

// AvailabilityBlock is a persisted time block for a staff member, resource or location.
type AvailabilityBlock struct {
	ID                string      `db:"id" json:"id"`
	OrganizationID    string      `db:"organization_id" json:"organization_id"`
	SubjectID         string      `db:"subject_id" json:"subject_id"`
	SubjectType       SubjectType `db:"subject_type" json:"subject_type"`
	Kind              BlockKind   `db:"kind" json:"kind"`
	Status            string      `db:"status" json:"status"`
	StartAt           time.Time   `db:"start_at" json:"start_at"`
	EndAt             time.Time   `db:"end_at" json:"end_at"`
	IsRecurring       bool        `db:"is_recurring" json:"is_recurring"`
	RecurrenceGroupID *string     `db:"recurrence_group_id" json:"recurrence_group_id,omitempty"`
	Label             *string     `db:"label" json:"label,omitempty"`
	CreatedBy         string      `db:"created_by" json:"created_by"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// TimeBlock projects the row onto the shape the conflict classifier works with.
func (b AvailabilityBlock) TimeBlock() TimeBlock {
	block := TimeBlock{
		ID:          b.ID,
		Start:       b.StartAt,
		End:         b.EndAt,
		Status:      b.Status,
		IsRecurring: b.IsRecurring,
	}
	if b.Label != nil {
		block.Label = *b.Label
	}
	return block
}

// AvailabilityFilter narrows block listings within one organization.
type AvailabilityFilter struct {
	OrganizationID string
	SubjectID      string
	Statuses       []string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}
