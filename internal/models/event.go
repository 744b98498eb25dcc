package models

import "time"

// AvailabilityEventType enumerates notifications emitted after a change is committed.
type AvailabilityEventType string

const (
	EventAvailabilityCreated AvailabilityEventType = "availability.created"
	EventAvailabilityDeleted AvailabilityEventType = "availability.deleted"
)

// AvailabilityEvent informs downstream listeners about a committed change.
type AvailabilityEvent struct {
	Type           AvailabilityEventType `json:"type"`
	OrganizationID string                `json:"organization_id"`
	SubjectID      string                `json:"subject_id"`
	BlockIDs       []string              `json:"block_ids"`
	Strategy       ResolutionStrategy    `json:"strategy,omitempty"`
	ActorID        string                `json:"actor_id"`
	OccurredAt     time.Time             `json:"occurred_at"`
}
