package control

import (
	stderrors "errors"
	"syscall"
	"testing"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", errors.NewValidationError("bad", nil), codes.InvalidArgument},
		{"configuration", errors.NewConfigurationError("unsafe", nil), codes.FailedPrecondition},
		{"unsupported", errors.NewUnsupportedError("none", nil), codes.Unimplemented},
		{"eperm", errors.NewSyscallError("setuid()", syscall.EPERM), codes.PermissionDenied},
		{"esrch", errors.NewSyscallError("send kill()", syscall.ESRCH), codes.NotFound},
		{"einval", errors.NewSyscallError("setpgid()", syscall.EINVAL), codes.InvalidArgument},
		{"other errno", errors.NewSyscallError("setrlimit()", syscall.ENOMEM), codes.Internal},
		{"plain", stderrors.New("plain"), codes.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(toStatus(tt.err)))
		})
	}
	assert.NoError(t, toStatus(nil))
}

func TestFromStatus_RestoresType(t *testing.T) {
	err := fromStatus(toStatus(errors.NewConfigurationError("cannot set tempdir", nil)))
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "cannot set tempdir")

	err = fromStatus(status.Error(codes.Unavailable, "connection refused"))
	assert.True(t, errors.IsInternalError(err))

	assert.NoError(t, fromStatus(nil))
}

func TestFromStatus_RestoresErrnoCause(t *testing.T) {
	sent := errors.NewSyscallError("send kill()", syscall.ESRCH)
	err := fromStatus(toStatus(sent))

	assert.ErrorIs(t, err, syscall.ESRCH)
	assert.Equal(t, sent.Error(), err.Error())

	err = fromStatus(toStatus(errors.NewValidationError("bad pid", nil)))
	assert.False(t, stderrors.Is(err, syscall.ESRCH))
	assert.Nil(t, stderrors.Unwrap(err))
}
