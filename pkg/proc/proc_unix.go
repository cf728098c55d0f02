//go:build linux || darwin || freebsd || dragonfly || netbsd || openbsd || solaris

package proc

import (
	"github.com/core-tools/hsu-sys/pkg/errors"

	"golang.org/x/sys/unix"
)

// Kill delivers signal sig to pid. Signal 0 probes for existence.
func Kill(pid int, sig int) error {
	if err := unix.Kill(pid, unix.Signal(sig)); err != nil {
		return errors.NewSyscallError(labelKill, err).
			WithContext("pid", pid).WithContext("signal", sig)
	}
	return nil
}

func Getuid() int {
	return unix.Getuid()
}

// Setuid changes the real and effective uid of every thread in the process
func Setuid(uid int) (int, error) {
	if err := unix.Setuid(uid); err != nil {
		return Getuid(), errors.NewSyscallError(labelSetuid, err).WithContext("uid", uid)
	}
	return Getuid(), nil
}

func Getgid() int {
	return unix.Getgid()
}

func Setgid(gid int) (int, error) {
	if err := unix.Setgid(gid); err != nil {
		return Getgid(), errors.NewSyscallError(labelSetgid, err).WithContext("gid", gid)
	}
	return Getgid(), nil
}

func Getpid() int {
	return unix.Getpid()
}

func Getppid() int {
	return unix.Getppid()
}

// Getpgid returns the process group of the calling process, or -1 if the
// kernel refuses to report it.
func Getpgid() int {
	pgid, err := unix.Getpgid(0)
	if err != nil {
		return -1
	}
	return pgid
}

// Setpgid moves the calling process into process group pgid. A pgid of 0
// makes the process the leader of a new group.
func Setpgid(pgid int) (int, error) {
	if err := unix.Setpgid(0, pgid); err != nil {
		return Getpgid(), errors.NewSyscallError(labelSetpgid, err).WithContext("pgid", pgid)
	}
	return Getpgid(), nil
}

// Getpriority returns the nice value of the process
func Getpriority() int {
	nice, err := getNice(unix.Getpid())
	if err != nil {
		return 0
	}
	return nice
}

// Setpriority sets the nice value of every thread of the process. Lowering
// it needs CAP_SYS_NICE or root.
func Setpriority(nice int) (int, error) {
	if err := setNice(nice); err != nil {
		return Getpriority(), errors.NewSyscallError(labelSetpriority, err).WithContext("priority", nice)
	}
	return Getpriority(), nil
}

// Getsid returns the session id of the calling process
func Getsid() int {
	sid, err := unix.Getsid(0)
	if err != nil {
		return -1
	}
	return sid
}

// IsRunning probes pid with signal 0. A process owned by another user
// still counts as running.
func IsRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, errors.NewValidationError("pid must be positive", nil).WithContext("pid", pid)
	}
	switch err := unix.Kill(pid, 0); err {
	case nil, unix.EPERM:
		return true, nil
	case unix.ESRCH:
		return false, nil
	default:
		return false, errors.NewSyscallError(labelKill, err).WithContext("pid", pid)
	}
}
