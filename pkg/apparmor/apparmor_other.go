//go:build !linux || noapparmor

package apparmor

import "github.com/core-tools/hsu-sys/pkg/errors"

func isEnabled() bool {
	return false
}

func changeProfile(name string) error {
	return errors.NewUnsupportedError("apparmor is not compiled in", nil)
}

func readCurrent() (string, error) {
	return "", nil
}
