//go:build linux || darwin || freebsd || dragonfly || netbsd || openbsd || solaris

package proc

import (
	"syscall"
	"testing"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"15", 15},
		{"0", 0},
		{"TERM", int(syscall.SIGTERM)},
		{"SIGKILL", int(syscall.SIGKILL)},
		{"hup", int(syscall.SIGHUP)},
		{" INT ", int(syscall.SIGINT)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignal_Invalid(t *testing.T) {
	for _, in := range []string{"", "-3", "SIGNOPE"} {
		_, err := ParseSignal(in)
		require.Error(t, err, in)
		assert.True(t, errors.IsValidationError(err), in)
	}
}

func TestSignalName(t *testing.T) {
	assert.Equal(t, "SIGTERM", SignalName(int(syscall.SIGTERM)))
	assert.Equal(t, "0", SignalName(0))
}
