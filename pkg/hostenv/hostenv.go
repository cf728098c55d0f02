// Package hostenv holds the host behaviours that only a safe build may
// change: the interactive flag and the temporary directory.
package hostenv

import (
	"os"
	"runtime"
	"strings"

	"github.com/core-tools/hsu-sys/pkg/capabilities"
	"github.com/core-tools/hsu-sys/pkg/errors"

	"golang.org/x/term"
)

// Host is the process-wide host environment. It is not safe for concurrent
// mutation; callers serialise.
type Host struct {
	caps        capabilities.Capabilities
	interactive bool
}

// New creates a Host whose interactive flag starts as "stdin is a terminal"
func New(caps capabilities.Capabilities) *Host {
	return &Host{
		caps:        caps,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func (h *Host) SafeBuild() bool {
	return h.caps.SafeBuild
}

func (h *Host) Interactive() bool {
	return h.interactive
}

// SetInteractive overrides the interactive flag and returns it
func (h *Host) SetInteractive(flag bool) (bool, error) {
	if !h.caps.SafeBuild {
		return flag, errors.NewConfigurationError("cannot set interactive mode: built without safebuild", nil)
	}
	h.interactive = flag
	return flag, nil
}

// TempDir returns the directory os.TempDir currently resolves to
func (h *Host) TempDir() string {
	return os.TempDir()
}

// SetTempDir points the process temp directory at path and returns path.
// The directory is not created.
func (h *Host) SetTempDir(path string) (string, error) {
	if !h.caps.SafeBuild {
		return path, errors.NewConfigurationError("cannot set temp directory: built without safebuild", nil)
	}
	if strings.TrimSpace(path) == "" {
		return path, errors.NewValidationError("temp directory cannot be empty", nil)
	}
	if err := os.Setenv(tempDirEnv(), path); err != nil {
		return path, errors.NewInternalError("failed to set temp directory", err).WithContext("path", path)
	}
	return path, nil
}

func tempDirEnv() string {
	if runtime.GOOS == "windows" {
		return "TMP"
	}
	return "TMPDIR"
}
