package rlimits

import "golang.org/x/sys/unix"

const (
	resourceAS      = unix.RLIMIT_AS
	resourceCore    = unix.RLIMIT_CORE
	resourceCPU     = unix.RLIMIT_CPU
	resourceData    = unix.RLIMIT_DATA
	resourceFSize   = unix.RLIMIT_FSIZE
	resourceMemlock = unix.RLIMIT_MEMLOCK
	resourceNoFile  = unix.RLIMIT_NOFILE
	resourceNProc   = unix.RLIMIT_NPROC
	resourceStack   = unix.RLIMIT_STACK
)

// Unlimited is RLIM_INFINITY
const Unlimited = ^uint64(0)
