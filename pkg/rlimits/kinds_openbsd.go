package rlimits

// OpenBSD has no RLIMIT_AS; the data segment limit is the closest match.
const (
	resourceCPU     = 0
	resourceFSize   = 1
	resourceData    = 2
	resourceStack   = 3
	resourceCore    = 4
	resourceMemlock = 6
	resourceNProc   = 7
	resourceNoFile  = 8
	resourceAS      = resourceData
)

const Unlimited = uint64(1<<63 - 1)
