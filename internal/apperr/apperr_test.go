package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedChain(t *testing.T) {
	base := New(NotFound, "no features for %d-%02d", 2024, 3)
	wrapped := fmt.Errorf("failed to select row: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, "no features for 2024-03", MessageOf(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, Internal, KindOf(err))
	assert.False(t, Is(nil, Internal))
}

func TestWrap_NilPassesThrough(t *testing.T) {
	assert.Nil(t, Wrap(DataUnavailable, nil, "ignored"))

	cause := errors.New("open features.parquet: no such file")
	err := Wrap(DataUnavailable, cause, "snapshot unreadable")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DATA_UNAVAILABLE")
}
