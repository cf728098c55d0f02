package rlimits

// Solaris and illumos have no RLIMIT_NPROC or RLIMIT_MEMLOCK.
const (
	resourceCPU     = 0
	resourceFSize   = 1
	resourceData    = 2
	resourceStack   = 3
	resourceCore    = 4
	resourceNoFile  = 5
	resourceAS      = 6
	resourceMemlock = -1
	resourceNProc   = -1
)

// RLIM_INFINITY is (rlim_t)-3
const Unlimited = ^uint64(0) - 2
