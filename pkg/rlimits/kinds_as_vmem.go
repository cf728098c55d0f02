//go:build freebsd || dragonfly || netbsd

package rlimits

const resourceAS = 10
