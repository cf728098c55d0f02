//go:build linux && !noapparmor

package apparmor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"golang.org/x/sys/unix"
)

var (
	procRoot = "/proc"
	sysRoot  = "/sys"
)

// attrPath prefers the LSM-stacking aware location introduced in Linux 5.1
func attrPath(name string) string {
	p := filepath.Join(procRoot, "thread-self", "attr", "apparmor", name)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(procRoot, "thread-self", "attr", name)
}

func isEnabled() bool {
	if _, err := os.Stat(filepath.Join(sysRoot, "kernel", "security", "apparmor")); err != nil {
		return false
	}
	buf, err := os.ReadFile(filepath.Join(sysRoot, "module", "apparmor", "parameters", "enabled"))
	return err == nil && bytes.HasPrefix(buf, []byte("Y"))
}

// execSelf replaces the process image with a fresh copy of the running
// binary; a pending exec label is applied by the kernel on the way.
var execSelf = func() error {
	return unix.Exec(filepath.Join(procRoot, "self", "exe"), os.Args, os.Environ())
}

// changeProfile queues name as the label of the next exec and re-executes
// the binary so that every thread starts confined. Labels are per task, so
// an in-place change would confine a single scheduler thread only.
func changeProfile(name string) error {
	// The pending label belongs to this thread and the exec must come from
	// it. The thread is never handed back to the scheduler once the label is
	// queued: a failed exec leaves it locked until the goroutine exits.
	runtime.LockOSThread()

	f, err := os.OpenFile(attrPath("exec"), os.O_WRONLY, 0)
	if err != nil {
		runtime.UnlockOSThread()
		return err
	}
	_, err = fmt.Fprintf(f, "exec %s", name)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		runtime.UnlockOSThread()
		return err
	}

	return execSelf()
}

func readCurrent() (string, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	buf, err := os.ReadFile(attrPath("current"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewIOError("failed to read apparmor context", err)
	}
	return string(buf), nil
}
