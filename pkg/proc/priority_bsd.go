//go:build darwin || freebsd || dragonfly || netbsd || openbsd || solaris

package proc

import "golang.org/x/sys/unix"

func getNice(pid int) (int, error) {
	return unix.Getpriority(unix.PRIO_PROCESS, pid)
}

// The BSDs keep one nice value per process.
func setNice(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Getpid(), nice)
}
