//go:build freebsd || dragonfly

package rlimits

import "golang.org/x/sys/unix"

// rlim_t is signed on these systems
type osSyscaller struct{}

func (osSyscaller) Setrlimit(resource int, soft, hard uint64) error {
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: int64(soft), Max: int64(hard)})
}

func (osSyscaller) Getrlimit(resource int) (uint64, uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(resource, &lim); err != nil {
		return 0, 0, err
	}
	return uint64(lim.Cur), uint64(lim.Max), nil
}
