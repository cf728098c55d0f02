//go:build linux && !noapparmor

package apparmor

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/core-tools/hsu-sys/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFakeRoots(t *testing.T) (proc, sys string) {
	t.Helper()
	dir := t.TempDir()
	proc = filepath.Join(dir, "proc")
	sys = filepath.Join(dir, "sys")

	oldProc, oldSys := procRoot, sysRoot
	procRoot, sysRoot = proc, sys
	t.Cleanup(func() { procRoot, sysRoot = oldProc, oldSys })
	return proc, sys
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func enable(t *testing.T, sys string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(sys, "kernel", "security", "apparmor"), 0o755))
	writeFile(t, filepath.Join(sys, "module", "apparmor", "parameters", "enabled"), "Y\n")
}

func TestIsEnabled_FromSysfs(t *testing.T) {
	_, sys := withFakeRoots(t)

	enabled, supported := IsEnabled()
	assert.True(t, supported)
	assert.False(t, enabled)

	require.NoError(t, os.MkdirAll(filepath.Join(sys, "kernel", "security", "apparmor"), 0o755))
	writeFile(t, filepath.Join(sys, "module", "apparmor", "parameters", "enabled"), "N\n")
	enabled, _ = IsEnabled()
	assert.False(t, enabled)

	writeFile(t, filepath.Join(sys, "module", "apparmor", "parameters", "enabled"), "Y\n")
	enabled, _ = IsEnabled()
	assert.True(t, enabled)
}

func TestContext_ReadsStackingAwarePathFirst(t *testing.T) {
	proc, sys := withFakeRoots(t)
	enable(t, sys)
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "current"), "legacy (complain)\n")
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "apparmor", "current"), "modern (enforce)\n")

	ctx, ok, err := Context()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SecurityContext{Label: "modern", Mode: "enforce"}, ctx)
}

func TestContext_LegacyPath(t *testing.T) {
	proc, sys := withFakeRoots(t)
	enable(t, sys)
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "current"), "unconfined\n")

	ctx, ok, err := Context()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "unconfined", ctx.Label)
	assert.Empty(t, ctx.Mode)
}

func TestContext_DisabledIsEmpty(t *testing.T) {
	proc, _ := withFakeRoots(t)
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "current"), "unconfined\n")

	_, ok, err := Context()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContext_MissingAttrIsEmpty(t *testing.T) {
	_, sys := withFakeRoots(t)
	enable(t, sys)

	_, ok, err := Context()
	require.NoError(t, err)
	assert.False(t, ok)
}

func stubExec(t *testing.T, err error) *int {
	t.Helper()
	calls := 0
	old := execSelf
	execSelf = func() error {
		calls++
		return err
	}
	t.Cleanup(func() { execSelf = old })
	return &calls
}

func TestChangeProfile_QueuesExecLabelAndReexecs(t *testing.T) {
	proc, _ := withFakeRoots(t)
	execPath := filepath.Join(proc, "thread-self", "attr", "apparmor", "exec")
	currentPath := filepath.Join(proc, "thread-self", "attr", "apparmor", "current")
	writeFile(t, execPath, "")
	writeFile(t, currentPath, "")
	calls := stubExec(t, nil)

	require.NoError(t, ChangeProfile("restricted"))

	buf, err := os.ReadFile(execPath)
	require.NoError(t, err)
	assert.Equal(t, "exec restricted", string(buf))

	buf, err = os.ReadFile(currentPath)
	require.NoError(t, err)
	assert.Empty(t, string(buf), "the running task must not be relabelled in place")
	assert.Equal(t, 1, *calls)
}

func TestChangeProfile_AlreadyConfinedSkipsExec(t *testing.T) {
	proc, sys := withFakeRoots(t)
	enable(t, sys)
	execPath := filepath.Join(proc, "thread-self", "attr", "apparmor", "exec")
	writeFile(t, execPath, "")
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "apparmor", "current"), "restricted (enforce)\n")
	calls := stubExec(t, nil)

	require.NoError(t, ChangeProfile("restricted"))

	buf, err := os.ReadFile(execPath)
	require.NoError(t, err)
	assert.Empty(t, string(buf))
	assert.Zero(t, *calls)
}

func TestChangeProfile_Failures(t *testing.T) {
	withFakeRoots(t)
	calls := stubExec(t, nil)

	err := ChangeProfile("  ")
	assert.True(t, errors.IsValidationError(err))

	err = ChangeProfile("restricted")
	require.Error(t, err)
	assert.True(t, errors.IsSyscallError(err))
	assert.Contains(t, err.Error(), "aa_change_profile() failed")
	assert.Zero(t, *calls, "nothing is executed when the label cannot be queued")
}

func TestChangeProfile_ExecFailure(t *testing.T) {
	proc, _ := withFakeRoots(t)
	writeFile(t, filepath.Join(proc, "thread-self", "attr", "exec"), "")
	stubExec(t, syscall.ENOENT)

	err := ChangeProfile("restricted")
	require.Error(t, err)
	assert.True(t, errors.IsSyscallError(err))
	assert.ErrorIs(t, err, syscall.ENOENT)
}
