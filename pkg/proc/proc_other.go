//go:build !linux && !darwin && !freebsd && !dragonfly && !netbsd && !openbsd && !solaris

package proc

import (
	"os"
	"strconv"

	"github.com/core-tools/hsu-sys/pkg/errors"
)

func unsupported(label string) error {
	return errors.NewUnsupportedError(label+" is not available on this platform", nil)
}

func Kill(pid int, sig int) error {
	return unsupported(labelKill)
}

func Getuid() int { return os.Getuid() }

func Setuid(uid int) (int, error) { return Getuid(), unsupported(labelSetuid) }

func Getgid() int { return os.Getgid() }

func Setgid(gid int) (int, error) { return Getgid(), unsupported(labelSetgid) }

func Getpid() int { return os.Getpid() }

func Getppid() int { return os.Getppid() }

func Getpgid() int { return -1 }

func Setpgid(pgid int) (int, error) { return Getpgid(), unsupported(labelSetpgid) }

func Getpriority() int { return 0 }

func Setpriority(nice int) (int, error) { return Getpriority(), unsupported(labelSetpriority) }

func Getsid() int { return -1 }

func ParseSignal(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError("signal must be a non-negative number", err).WithContext("signal", s)
	}
	return n, nil
}

func SignalName(sig int) string {
	return strconv.Itoa(sig)
}

// IsRunning only recognises the calling process here
func IsRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, errors.NewValidationError("pid must be positive", nil).WithContext("pid", pid)
	}
	if pid == os.Getpid() {
		return true, nil
	}
	return false, unsupported(labelKill)
}
