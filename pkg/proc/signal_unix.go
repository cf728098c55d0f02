//go:build linux || darwin || freebsd || dragonfly || netbsd || openbsd || solaris

package proc

import (
	"strconv"
	"strings"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"golang.org/x/sys/unix"
)

// ParseSignal accepts a signal number ("15") or name ("TERM", "SIGTERM")
func ParseSignal(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.NewValidationError("signal cannot be empty", nil)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errors.NewValidationError("signal must not be negative", nil).WithContext("signal", s)
		}
		return n, nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return 0, errors.NewValidationError("unknown signal", nil).WithContext("signal", s)
	}
	return int(sig), nil
}

// SignalName returns the conventional name of sig, e.g. "SIGTERM"
func SignalName(sig int) string {
	if sig == 0 {
		return "0"
	}
	name := unix.SignalName(unix.Signal(sig))
	if name == "" {
		return strconv.Itoa(sig)
	}
	return name
}
