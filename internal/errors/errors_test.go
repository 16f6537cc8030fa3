package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeDocumentNotFound, CategoryIO, SeverityWarning},
		{ErrCodeVaultUnavailable, CategoryIO, SeverityFatal},
		{ErrCodeInvalidQuery, CategoryValidation, SeverityError},
		{ErrCodeInternal, CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New(ErrCodeDocumentRead, "read failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, stderrors.Is(err, New(ErrCodeDocumentRead, "other message", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeDocumentWrite, "read failed", nil)))
}

func TestWrap_NilCause(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeInvalidQuery, "bad query", nil).
		WithDetail("field", "name").
		WithDetail("value", "")

	require.NotNil(t, err.Details)
	assert.Equal(t, "name", err.Details["field"])
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeVaultUnavailable, "gone", nil)))
	assert.False(t, IsFatal(New(ErrCodeDocumentRead, "flaky", nil)))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetCode(New(ErrCodeInternal, "x", nil)))
	assert.Equal(t, "", GetCode(stderrors.New("plain")))
}
