package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesCopies(t *testing.T) {
	custom := ErrInsufficientFunds.WithMessage("balance too low for 50.00")
	wrapped := fmt.Errorf("transfer: %w", custom)

	assert.True(t, stderrors.Is(wrapped, ErrInsufficientFunds))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidAmount))
	assert.Equal(t, KindInsufficientFunds, KindOf(wrapped))
	assert.Equal(t, "balance too low for 50.00", Message(wrapped))
}

func TestDomainError_WrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := ErrPartialFailureReversed.Wrap(cause)

	assert.ErrorIs(t, err, ErrPartialFailureReversed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindOf_PlainError(t *testing.T) {
	err := stderrors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal error", Message(err))
}
