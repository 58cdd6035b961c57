package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		wantCategory Category
		wantRetry    bool
	}{
		{"config error", ErrCodeConfigInvalid, CategoryConfig, false},
		{"not found", ErrCodeDocumentNotFound, CategoryIO, false},
		{"corrupt index", ErrCodeCorruptIndex, CategoryIO, false},
		{"init timeout", ErrCodeProviderInitTimeout, CategoryProvider, true},
		{"dimension mismatch", ErrCodeDimensionMismatch, CategoryValidation, false},
		{"embedding failed", ErrCodeEmbeddingFailed, CategoryInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantRetry, err.Retryable)
		})
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeDocumentNotFound, "document \"abc\" not found", nil)
	assert.Equal(t, `[ERR_201_DOCUMENT_NOT_FOUND] document "abc" not found`, err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeDocumentCorrupt, cause)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("doc-1"))

	var de *DocError
	require.True(t, stderrors.As(err, &de))
	assert.True(t, stderrors.Is(de, New(ErrCodeDocumentNotFound, "", nil)))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(InternalError("x", nil)))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeInvalidInput, "empty content", nil).
		WithDetail("field", "content").
		WithSuggestion("Provide non-empty content.")

	assert.Equal(t, "content", err.Details["field"])
	assert.Equal(t, "Provide non-empty content.", err.Suggestion)
}

func TestDimensionMismatch(t *testing.T) {
	err := DimensionMismatch(768, 256)
	assert.Equal(t, ErrCodeDimensionMismatch, err.Code)
	assert.Contains(t, err.Error(), "expected 768, got 256")
	assert.NotEmpty(t, err.Suggestion)
}

func TestGetCodeAndCategory(t *testing.T) {
	err := New(ErrCodeProviderUnavailable, "down", nil)
	assert.Equal(t, ErrCodeProviderUnavailable, GetCode(err))
	assert.Equal(t, CategoryProvider, GetCategory(err))

	plain := stderrors.New("plain")
	assert.Empty(t, GetCode(plain))
	assert.Empty(t, string(GetCategory(plain)))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCodeEmbeddingFailed, "x", nil)))
	assert.False(t, IsRetryable(New(ErrCodeInvalidInput, "x", nil)))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}
