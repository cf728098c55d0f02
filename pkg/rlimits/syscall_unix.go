//go:build linux || darwin || netbsd || openbsd || solaris

package rlimits

import "golang.org/x/sys/unix"

type osSyscaller struct{}

func (osSyscaller) Setrlimit(resource int, soft, hard uint64) error {
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: soft, Max: hard})
}

func (osSyscaller) Getrlimit(resource int) (uint64, uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(resource, &lim); err != nil {
		return 0, 0, err
	}
	return lim.Cur, lim.Max, nil
}
