package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesSentinel(t *testing.T) {
	cloned := Clone(ErrMalformedBlock, "existing block b-1 ends before it starts")
	wrapped := fmt.Errorf("classify: %w", cloned)

	assert.True(t, stderrors.Is(wrapped, ErrMalformedBlock))
	assert.False(t, stderrors.Is(wrapped, ErrUnsupportedFrequency))
	assert.Equal(t, "existing block b-1 ends before it starts", FromError(wrapped).Message)
}

func TestPublicHidesInternalCauses(t *testing.T) {
	hidden := Public(Wrap(fmt.Errorf("pq: relation missing"), ErrUnsupportedFrequency.Code, ErrUnsupportedFrequency.Status, "unsupported frequency YEARLY"))
	assert.Equal(t, ErrInternal.Code, hidden.Code)
	assert.Equal(t, ErrInternal.Message, hidden.Message)

	visible := Public(Clone(ErrValidation, "endDate must not precede startDate"))
	assert.Equal(t, ErrValidation.Code, visible.Code)
	assert.Equal(t, "endDate must not precede startDate", visible.Message)
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrConflict, map[string]int{"conflicts": 2})
	assert.Equal(t, map[string]int{"conflicts": 2}, err.Details)
	assert.Nil(t, ErrConflict.Details)
}
