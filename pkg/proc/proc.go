// Package proc forwards process identity, signal and scheduling operations
// to the kernel. Nothing is cached: every getter asks the OS and every setter
// returns the value the OS reports after the change.
package proc

// Labels identifying the failing call in syscall errors
const (
	labelKill        = "send kill()"
	labelSetuid      = "setuid()"
	labelSetgid      = "setgid()"
	labelSetpgid     = "setpgid()"
	labelSetpriority = "setpriority()"
)
