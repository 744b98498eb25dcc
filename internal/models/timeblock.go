package models

import "time"

// TimeBlock is an existing or proposed interval on a subject's calendar.
// Status is compared for equality only.
type TimeBlock struct {
	ID          string    `json:"id,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	IsRecurring bool      `json:"is_recurring"`
	Label       string    `json:"label,omitempty"`
}

// ConflictType names how an existing block relates to a proposed one.
type ConflictType string

const (
	ConflictContained ConflictType = "contained"
	ConflictOverlap   ConflictType = "overlap"
	ConflictAdjacent  ConflictType = "adjacent"
)

// ConflictRecord pairs an existing block with its relationship to the proposed block.
type ConflictRecord struct {
	ExistingBlock TimeBlock    `json:"existing_block"`
	ConflictType  ConflictType `json:"conflict_type"`
}

// ResolutionStrategy is the recommended way to apply a conflicting block.
type ResolutionStrategy string

const (
	ResolutionNone     ResolutionStrategy = "none"
	ResolutionMerge    ResolutionStrategy = "merge"
	ResolutionOverride ResolutionStrategy = "override"
)
