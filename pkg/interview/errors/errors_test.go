package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeMemoryWrite, "failed to store frame", nil)
	assert.Equal(t, "MEMORY_WRITE_FAILED: failed to store frame", err.Error())

	wrapped := New(ErrCodeAnswerPipeline, "failed to persist answer", errors.New("disk full"))
	assert.Equal(t, "ANSWER_PIPELINE_FAILED: failed to persist answer (caused by: disk full)", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(ErrCodeThinkerCall, "generation failed", cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, fmt.Errorf("outer: %w", err), cause)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &appErr)
	assert.Equal(t, ErrCodeThinkerCall, appErr.Code)
}
