package domain

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/core-tools/hsu-sys/pkg/capabilities"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/hostenv"
	"github.com/core-tools/hsu-sys/pkg/proc"
	"github.com/core-tools/hsu-sys/pkg/rlimits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogger discards everything
type TestLogger struct{}

func (l *TestLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (l *TestLogger) Debugf(format string, args ...interface{})               {}
func (l *TestLogger) Infof(format string, args ...interface{})                {}
func (l *TestLogger) Warnf(format string, args ...interface{})                {}
func (l *TestLogger) Errorf(format string, args ...interface{})               {}

type countingSyscaller struct {
	sets int
}

func (c *countingSyscaller) Setrlimit(resource int, soft, hard uint64) error {
	c.sets++
	return nil
}

func (c *countingSyscaller) Getrlimit(resource int) (uint64, uint64, error) {
	return 1, 2, nil
}

func newTestHandler(safeBuild bool) (Contract, *countingSyscaller) {
	sys := &countingSyscaller{}
	h := NewSysHandler(HandlerOptions{
		Host:    hostenv.New(capabilities.Capabilities{SafeBuild: safeBuild}),
		Rlimits: rlimits.NewApplier(sys),
	}, &TestLogger{})
	return h, sys
}

func TestHandler_Status(t *testing.T) {
	h, _ := newTestHandler(false)
	status, err := h.Status(context.Background())
	require.NoError(t, err)
	assert.Contains(t, status, "hsu-sys: OK")
	assert.Contains(t, status, "safebuild: false")
	assert.Contains(t, status, fmt.Sprintf(", sid: %d,", proc.Getsid()))
	assert.Contains(t, status, fmt.Sprintf(", pgid: %d,", proc.Getpgid()))
}

func TestHandler_Identity(t *testing.T) {
	h, _ := newTestHandler(false)
	ctx := context.Background()

	pid, err := h.GetPID(ctx)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	ppid, err := h.GetPPID(ctx)
	require.NoError(t, err)
	assert.Equal(t, os.Getppid(), ppid)

	uid, err := h.GetUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, os.Getuid(), uid)

	gid, err := h.GetGID(ctx)
	require.NoError(t, err)
	assert.Equal(t, os.Getgid(), gid)
}

func TestHandler_SetRlimits(t *testing.T) {
	h, sys := newTestHandler(false)
	ctx := context.Background()

	require.NoError(t, h.SetRlimits(ctx, rlimits.Missing()))
	assert.Zero(t, sys.sets)

	err := h.SetRlimits(ctx, []float64{1, 2, 3})
	assert.True(t, errors.IsValidationError(err))
	assert.Zero(t, sys.sets)

	limits, err := h.GetRlimits(ctx)
	require.NoError(t, err)
	assert.Len(t, limits, rlimits.Count)
}

func TestHandler_HostMutationGatedBySafeBuild(t *testing.T) {
	t.Setenv("TMPDIR", os.Getenv("TMPDIR"))
	ctx := context.Background()

	unsafe, _ := newTestHandler(false)
	safe, err := unsafe.SafeBuild(ctx)
	require.NoError(t, err)
	assert.False(t, safe)
	_, err = unsafe.SetInteractive(ctx, true)
	assert.True(t, errors.IsConfigurationError(err))
	_, err = unsafe.SetTempDir(ctx, t.TempDir())
	assert.True(t, errors.IsConfigurationError(err))

	h, _ := newTestHandler(true)
	got, err := h.SetInteractive(ctx, true)
	require.NoError(t, err)
	assert.True(t, got)
	interactive, err := h.Interactive(ctx)
	require.NoError(t, err)
	assert.True(t, interactive)

	dir := t.TempDir()
	path, err := h.SetTempDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, path)
}

func TestHandler_AppArmorQueriesNeverFail(t *testing.T) {
	h, _ := newTestHandler(false)
	ctx := context.Background()

	_, supported, err := h.AppArmorEnabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, capabilities.Current().AppArmor, supported)

	if !supported {
		_, ok, err := h.AppArmorContext(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, h.ChangeProfile(ctx, "anything"))
	}
}
