package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workforce-api/internal/models"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

type conflictRecorderStub struct {
	conflicts   map[models.ConflictType]int
	resolutions map[models.ResolutionStrategy]int
}

func newConflictRecorderStub() *conflictRecorderStub {
	return &conflictRecorderStub{
		conflicts:   map[models.ConflictType]int{},
		resolutions: map[models.ResolutionStrategy]int{},
	}
}

func (s *conflictRecorderStub) RecordConflict(conflictType models.ConflictType) {
	s.conflicts[conflictType]++
}

func (s *conflictRecorderStub) RecordResolution(strategy models.ResolutionStrategy) {
	s.resolutions[strategy]++
}

func clock(hour, minute int) time.Time {
	return time.Date(2024, time.January, 1, hour, minute, 0, 0, time.UTC)
}

func block(id string, startH, startM, endH, endM int, status string) models.TimeBlock {
	return models.TimeBlock{ID: id, Start: clock(startH, startM), End: clock(endH, endM), Status: status}
}

func TestConflictClassifierContainedMerges(t *testing.T) {
	metrics := newConflictRecorderStub()
	classifier := NewConflictClassifier(metrics)
	proposed := block("", 10, 0, 11, 0, "available")

	records, err := classifier.Classify(proposed, []models.TimeBlock{block("b-1", 10, 30, 10, 45, "available")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictContained, records[0].ConflictType)
	assert.Equal(t, models.ResolutionMerge, classifier.Resolve(proposed, records))
	assert.Equal(t, 1, metrics.conflicts[models.ConflictContained])
	assert.Equal(t, 1, metrics.resolutions[models.ResolutionMerge])
}

func TestConflictClassifierOverlapOverrides(t *testing.T) {
	classifier := NewConflictClassifier(nil)
	proposed := block("", 10, 0, 11, 0, "available")

	records, err := classifier.Classify(proposed, []models.TimeBlock{block("b-1", 9, 0, 10, 30, "unavailable")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictOverlap, records[0].ConflictType)
	assert.Equal(t, models.ResolutionOverride, classifier.Resolve(proposed, records))
}

func TestConflictClassifierAdjacent(t *testing.T) {
	classifier := NewConflictClassifier(nil)
	proposed := block("", 10, 0, 11, 0, "available")

	records, err := classifier.Classify(proposed, []models.TimeBlock{
		block("after", 11, 0, 12, 0, "busy"),
		block("before", 9, 0, 10, 0, "busy"),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "after", records[0].ExistingBlock.ID)
	assert.Equal(t, models.ConflictAdjacent, records[0].ConflictType)
	assert.Equal(t, models.ConflictAdjacent, records[1].ConflictType)
}

func TestConflictClassifierOmitsDisjointBlocks(t *testing.T) {
	classifier := NewConflictClassifier(nil)
	proposed := block("", 10, 0, 11, 0, "available")

	records, err := classifier.Classify(proposed, []models.TimeBlock{block("gap", 11, 1, 12, 0, "busy")})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, models.ResolutionNone, classifier.Resolve(proposed, records))
}

func TestConflictClassifierPairExclusivity(t *testing.T) {
	proposed := block("", 10, 0, 11, 0, "available")
	cases := []struct {
		name     string
		existing models.TimeBlock
		want     models.ConflictType
		conflict bool
	}{
		{name: "identical", existing: block("a", 10, 0, 11, 0, "x"), want: models.ConflictContained, conflict: true},
		{name: "proposed inside existing", existing: block("b", 9, 0, 12, 0, "x"), want: models.ConflictContained, conflict: true},
		{name: "shared start", existing: block("c", 10, 0, 10, 15, "x"), want: models.ConflictContained, conflict: true},
		{name: "overlap tail", existing: block("d", 10, 45, 11, 30, "x"), want: models.ConflictOverlap, conflict: true},
		{name: "touch end", existing: block("e", 11, 0, 11, 30, "x"), want: models.ConflictAdjacent, conflict: true},
		{name: "gap", existing: block("f", 8, 0, 9, 0, "x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ClassifyPair(proposed, tc.existing)
			assert.Equal(t, tc.conflict, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConflictClassifierResolveMergesWhenAnyStatusMatches(t *testing.T) {
	classifier := NewConflictClassifier(nil)
	proposed := block("", 10, 0, 11, 0, "available")

	records, err := classifier.Classify(proposed, []models.TimeBlock{
		block("a", 9, 0, 10, 30, "unavailable"),
		block("b", 10, 45, 12, 0, "available"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionMerge, classifier.Resolve(proposed, records))
}

func TestConflictClassifierRejectsMalformedBlocks(t *testing.T) {
	classifier := NewConflictClassifier(nil)

	_, err := classifier.Classify(block("", 11, 0, 10, 0, "available"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedBlock))

	_, err = classifier.Classify(block("", 10, 0, 11, 0, "available"), []models.TimeBlock{
		block("ok", 10, 0, 10, 30, "available"),
		block("zero", 10, 30, 10, 30, "available"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMalformedBlock))
	assert.Contains(t, err.Error(), "existing block zero")
}

func TestExplainConflict(t *testing.T) {
	proposed := block("", 10, 0, 11, 0, "available")

	inner := models.ConflictRecord{ExistingBlock: block("a", 10, 30, 10, 45, "available"), ConflictType: models.ConflictContained}
	assert.Equal(t, "Your new available block contains this existing available block", ExplainConflict(proposed, inner))

	outer := models.ConflictRecord{ExistingBlock: block("b", 9, 0, 12, 0, "busy"), ConflictType: models.ConflictContained}
	assert.Equal(t, "Your new available block falls within this existing busy block", ExplainConflict(proposed, outer))

	recurring := block("c", 9, 0, 10, 30, "unavailable")
	recurring.IsRecurring = true
	overlap := models.ConflictRecord{ExistingBlock: recurring, ConflictType: models.ConflictOverlap}
	assert.Equal(t, "Your new available block overlaps with this existing unavailable block (recurring)", ExplainConflict(proposed, overlap))

	adjacent := models.ConflictRecord{ExistingBlock: block("d", 11, 0, 12, 0, "busy"), ConflictType: models.ConflictAdjacent}
	assert.Equal(t, "Your new available block is directly adjacent to this existing busy block", ExplainConflict(proposed, adjacent))
}
