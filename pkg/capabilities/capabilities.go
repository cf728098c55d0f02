// Package capabilities describes the compile-time features of this build.
//
// The descriptor is resolved once at package initialisation from build tags
// and never changes afterwards:
//
//	safebuild   permits mutation of host behaviour (temp dir, interactive mode)
//	noapparmor  disables AppArmor confinement operations on Linux
package capabilities

import "runtime"

// Capabilities is a frozen view of the build configuration
type Capabilities struct {
	SafeBuild bool
	AppArmor  bool
	GOOS      string
}

var current = Capabilities{
	SafeBuild: safeBuild,
	AppArmor:  haveAppArmor,
	GOOS:      runtime.GOOS,
}

// Current returns the capabilities this binary was built with
func Current() Capabilities {
	return current
}
