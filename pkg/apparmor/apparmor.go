// Package apparmor switches and inspects the AppArmor confinement of the
// calling process through the kernel's attr interface. It needs no libapparmor.
//
// On builds without AppArmor support (non-Linux, or the noapparmor tag)
// ChangeProfile is a no-op and the queries report that support is absent
// instead of failing.
package apparmor

import (
	"strings"

	"github.com/core-tools/hsu-sys/pkg/capabilities"
	"github.com/core-tools/hsu-sys/pkg/errors"
)

const labelChangeProfile = "aa_change_profile()"

// SecurityContext is the confinement of a task. Mode is empty for
// unconfined tasks, otherwise e.g. "enforce" or "complain".
type SecurityContext struct {
	Label string
	Mode  string
}

// Supported reports whether this build carries AppArmor support
func Supported() bool {
	return capabilities.Current().AppArmor
}

// ChangeProfile confines the whole process to profile name. The profile is
// attached to the next exec and the binary re-executes itself with the same
// arguments and environment, so on success the call does not return. A
// process already running under name is left alone, which keeps the
// restarted binary from looping. The change cannot be undone by an
// unprivileged process.
func ChangeProfile(name string) error {
	if !Supported() {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError("profile name cannot be empty", nil)
	}
	if current, ok, err := Context(); err == nil && ok && current.Label == name {
		return nil
	}
	if err := changeProfile(name); err != nil {
		return errors.NewSyscallError(labelChangeProfile, err).WithContext("profile", name)
	}
	return nil
}

// IsEnabled reports whether AppArmor is active in the kernel. supported is
// false when this build has no AppArmor support; enabled is then false too.
func IsEnabled() (enabled bool, supported bool) {
	if !Supported() {
		return false, false
	}
	return isEnabled(), true
}

// Context returns the confinement of the calling task. ok is false when
// support is missing, AppArmor is disabled or the kernel reports nothing.
func Context() (SecurityContext, bool, error) {
	if !Supported() || !isEnabled() {
		return SecurityContext{}, false, nil
	}
	raw, err := readCurrent()
	if err != nil {
		return SecurityContext{}, false, err
	}
	ctx, ok := ParseContext(raw)
	return ctx, ok, nil
}

// ParseContext splits the contents of an attr/current file, such as
// "/usr/bin/foo (enforce)\n", into label and mode.
func ParseContext(raw string) (SecurityContext, bool) {
	s := strings.TrimRight(raw, "\x00\n")
	if s == "" {
		return SecurityContext{}, false
	}
	if strings.HasSuffix(s, ")") {
		if i := strings.LastIndex(s, " ("); i > 0 {
			return SecurityContext{Label: s[:i], Mode: s[i+2 : len(s)-1]}, true
		}
	}
	return SecurityContext{Label: s}, true
}
