//go:build !linux && !darwin && !freebsd && !dragonfly && !netbsd && !openbsd && !solaris

package rlimits

import "github.com/core-tools/hsu-sys/pkg/errors"

type osSyscaller struct{}

func (osSyscaller) Setrlimit(resource int, soft, hard uint64) error {
	return errors.NewUnsupportedError("setrlimit is not available on this platform", nil)
}

func (osSyscaller) Getrlimit(resource int) (uint64, uint64, error) {
	return 0, 0, errors.NewUnsupportedError("getrlimit is not available on this platform", nil)
}
