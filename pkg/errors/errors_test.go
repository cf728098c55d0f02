package errors

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyscallError_MessageCarriesLabel(t *testing.T) {
	err := NewSyscallError("setrlimit()", syscall.EPERM)

	assert.Equal(t, "setrlimit() failed", err.Message)
	assert.Equal(t, "setrlimit()", err.Context["call"])
	assert.Contains(t, err.Error(), "syscall: setrlimit() failed")
	assert.True(t, IsSyscallError(err))
	assert.False(t, IsValidationError(err))
}

func TestSyscallError_Errno(t *testing.T) {
	err := NewSyscallError("send kill()", syscall.ESRCH)

	errno, ok := err.Errno()
	require.True(t, ok)
	assert.Equal(t, syscall.ESRCH, errno)
	assert.True(t, errors.Is(err, syscall.ESRCH))

	_, ok = NewValidationError("bad input", nil).Errno()
	assert.False(t, ok)
}

func TestTypeChecks_ThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("limit vector has wrong size", nil), IsValidationError},
		{"configuration", NewConfigurationError("not a safe build", nil), IsConfigurationError},
		{"unsupported", NewUnsupportedError("apparmor", nil), IsUnsupportedError},
		{"not found", NewNotFoundError("missing", nil), IsNotFoundError},
		{"io", NewIOError("read failed", nil), IsIOError},
		{"internal", NewInternalError("boom", nil), IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(wrapped))
			assert.False(t, IsSyscallError(wrapped))
		})
	}
}

func TestDomainError_IsMatchesType(t *testing.T) {
	err := NewConfigurationError("cannot set tempdir", nil)

	assert.True(t, errors.Is(err, &DomainError{Type: ErrorTypeConfiguration}))
	assert.False(t, errors.Is(err, &DomainError{Type: ErrorTypeValidation}))
}

func TestTypeOf_PlainError(t *testing.T) {
	_, ok := TypeOf(errors.New("plain"))
	assert.False(t, ok)
}
