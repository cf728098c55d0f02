//go:build linux && !noapparmor

package capabilities

const haveAppArmor = true
