//go:build darwin || freebsd || dragonfly || netbsd

package rlimits

// Values from <sys/resource.h>; on FreeBSD, DragonFly and NetBSD RLIMIT_AS
// aliases RLIMIT_VMEM.
const (
	resourceCPU     = 0
	resourceFSize   = 1
	resourceData    = 2
	resourceStack   = 3
	resourceCore    = 4
	resourceMemlock = 6
	resourceNProc   = 7
	resourceNoFile  = 8
)

const Unlimited = uint64(1<<63 - 1)
