//go:build !linux && !darwin && !freebsd && !dragonfly && !netbsd && !openbsd && !solaris

package rlimits

const (
	resourceAS      = -1
	resourceCore    = -1
	resourceCPU     = -1
	resourceData    = -1
	resourceFSize   = -1
	resourceMemlock = -1
	resourceNoFile  = -1
	resourceNProc   = -1
	resourceStack   = -1
)

const Unlimited = ^uint64(0)
