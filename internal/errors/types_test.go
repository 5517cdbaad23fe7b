package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessageIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewPersistenceFailure(cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfUnwrapsWrappedError(t *testing.T) {
	err := NewParentNotFound("ghost")
	wrapped := fmt.Errorf("handling request: %w", err)

	assert.Equal(t, ErrCodeParentNotFound, CodeOf(wrapped))
}

func TestCodeOfPlainErrorFallsBack(t *testing.T) {
	assert.Equal(t, ErrCodePersistenceFailure, CodeOf(stderrors.New("boom")))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(NewInvalidRequest("bad")))
	assert.False(t, IsAppError(stderrors.New("plain")))
}
