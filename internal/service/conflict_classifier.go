package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/pkg/dateutil"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

type conflictRecorder interface {
	RecordConflict(conflictType models.ConflictType)
	RecordResolution(strategy models.ResolutionStrategy)
}

// ConflictClassifier compares a proposed block against a subject's existing blocks.
// It holds no state besides the optional metrics sink.
type ConflictClassifier struct {
	metrics conflictRecorder
}

// NewConflictClassifier constructs a classifier.
func NewConflictClassifier(metrics conflictRecorder) *ConflictClassifier {
	return &ConflictClassifier{metrics: metrics}
}

// Classify returns one record per existing block that is contained in, overlaps or touches
// the proposed block. Disjoint blocks are omitted and input order is kept.
func (c *ConflictClassifier) Classify(proposed models.TimeBlock, existing []models.TimeBlock) ([]models.ConflictRecord, error) {
	if err := checkBlock(proposed, "proposed block"); err != nil {
		return nil, err
	}
	for _, block := range existing {
		if err := checkBlock(block, describeExisting(block)); err != nil {
			return nil, err
		}
	}

	records := make([]models.ConflictRecord, 0, len(existing))
	for _, block := range existing {
		conflictType, ok := ClassifyPair(proposed, block)
		if !ok {
			continue
		}
		records = append(records, models.ConflictRecord{ExistingBlock: block, ConflictType: conflictType})
		if c.metrics != nil {
			c.metrics.RecordConflict(conflictType)
		}
	}
	return records, nil
}

// Resolve recommends merge when any conflict shares the proposed status, override otherwise.
// An empty conflict set needs no resolution.
func (c *ConflictClassifier) Resolve(proposed models.TimeBlock, records []models.ConflictRecord) models.ResolutionStrategy {
	strategy := resolve(proposed, records)
	if c.metrics != nil && strategy != models.ResolutionNone {
		c.metrics.RecordResolution(strategy)
	}
	return strategy
}

func resolve(proposed models.TimeBlock, records []models.ConflictRecord) models.ResolutionStrategy {
	if len(records) == 0 {
		return models.ResolutionNone
	}
	for _, record := range records {
		if record.ExistingBlock.Status == proposed.Status {
			return models.ResolutionMerge
		}
	}
	return models.ResolutionOverride
}

// ClassifyPair reports the relationship between two well-formed blocks.
// Containment is checked first, so identical ranges are contained.
func ClassifyPair(proposed, existing models.TimeBlock) (models.ConflictType, bool) {
	p := blockInterval(proposed)
	e := blockInterval(existing)
	switch {
	case p.Contains(e) || e.Contains(p):
		return models.ConflictContained, true
	case p.Overlaps(e):
		return models.ConflictOverlap, true
	case p.Touches(e):
		return models.ConflictAdjacent, true
	default:
		return "", false
	}
}

// ExplainConflict renders the sentence shown next to a conflict in the confirmation dialog.
func ExplainConflict(proposed models.TimeBlock, record models.ConflictRecord) string {
	existing := record.ExistingBlock
	var phrase string
	switch record.ConflictType {
	case models.ConflictContained:
		if blockInterval(proposed).Contains(blockInterval(existing)) {
			phrase = "contains"
		} else {
			phrase = "falls within"
		}
	case models.ConflictOverlap:
		phrase = "overlaps with"
	case models.ConflictAdjacent:
		phrase = "is directly adjacent to"
	default:
		phrase = "conflicts with"
	}

	msg := fmt.Sprintf("Your new %s block %s this existing %s block", statusLabel(proposed.Status), phrase, statusLabel(existing.Status))
	if existing.IsRecurring {
		msg += " (recurring)"
	}
	return msg
}

func statusLabel(status string) string {
	if status == "" {
		return "unspecified"
	}
	return status
}

func blockInterval(block models.TimeBlock) dateutil.Interval {
	return dateutil.Interval{Start: block.Start, End: block.End}
}

func checkBlock(block models.TimeBlock, name string) error {
	if blockInterval(block).Valid() {
		return nil
	}
	return appErrors.Clone(appErrors.ErrMalformedBlock, fmt.Sprintf("%s must start before it ends (start %s, end %s)",
		name, block.Start.Format(time.RFC3339), block.End.Format(time.RFC3339)))
}

func describeExisting(block models.TimeBlock) string {
	if block.ID == "" {
		return "existing block"
	}
	return fmt.Sprintf("existing block %s", block.ID)
}
