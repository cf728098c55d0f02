package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"testing"
	"time"

	corelogging "github.com/core-tools/hsu-core/pkg/logging"

	"github.com/core-tools/hsu-sys/pkg/config"
	"github.com/core-tools/hsu-sys/pkg/control"
	"github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/pidfile"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func nopCoreLogger() corelogging.Logger {
	return corelogging.NewLogger("", corelogging.LogFuncs{})
}

func freePort(t *testing.T) int {
	t.Helper()
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	return port
}

// dial connects to a server on localhost and returns its sys gateway. The
// returned func closes the connection so a graceful stop has nothing to wait for.
func dial(t *testing.T, port int) (domain.Contract, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, fmt.Sprintf("127.0.0.1:%d", port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return control.NewGRPCClientGateway(conn, logging.NewNopLogger()), func() { conn.Close() }
}

// assertPortFree waits briefly since Serve may close the listener after Stop returns
func assertPortFree(t *testing.T, port int) {
	t.Helper()
	require.Eventually(t, func() bool {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			return false
		}
		listener.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond, "port %d is still bound", port)
}

func TestServer_Lifecycle(t *testing.T) {
	port := freePort(t)
	s, err := NewServer(Options{Port: port, ForceShutdownTimeout: 5 * time.Second}, nopCoreLogger(), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, s.State())

	s.Start(context.Background())
	assert.Equal(t, StateRunning, s.State())

	client, hangUp := dial(t, port)
	ctx := context.Background()

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Contains(t, status, "hsu-sys: OK")

	pid, err := client.GetPID(ctx)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	hangUp()

	s.Stop(context.Background())
	assert.Equal(t, StateStopped, s.State())
	assertPortFree(t, port)

	// A second stop is a no-op
	s.Stop(context.Background())
	assert.Equal(t, StateStopped, s.State())
}

func TestServer_StopBeforeStartReleasesPort(t *testing.T) {
	port := freePort(t)
	s, err := NewServer(Options{Port: port, ForceShutdownTimeout: 5 * time.Second}, nopCoreLogger(), logging.NewNopLogger())
	require.NoError(t, err)

	s.Stop(context.Background())
	assert.Equal(t, StateStopped, s.State())
	assertPortFree(t, port)
}

func TestRun_RejectsInvalidConfiguration(t *testing.T) {
	logger := logging.NewNopLogger()

	err := Run(1, nil, nil, logger)
	assert.True(t, errors.IsValidationError(err))

	cfg := config.Default()
	cfg.Server.Port = 70000
	err = Run(1, cfg, nil, logger)
	assert.True(t, errors.IsValidationError(err))

	cfg = config.Default()
	cfg.Startup.Rlimits = map[string]config.LimitValue{"threads": 8}
	err = Run(1, cfg, nil, logger)
	assert.True(t, errors.IsValidationError(err))
}

func TestRun_RefusesWhileAnotherInstanceIsLive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("liveness checks need POSIX signals")
	}
	files := &pidfile.Config{Directory: t.TempDir()}
	manager := pidfile.NewManager(*files, logging.NewNopLogger())
	// The test binary's parent stands in for a running server
	require.NoError(t, manager.Acquire(os.Getppid(), 1))

	cfg := config.Default()
	cfg.Server.Port = freePort(t)
	cfg.Server.ProcessFiles = files

	err := Run(1, cfg, nopCoreLogger(), logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "another instance is running")

	pid, err := manager.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getppid(), pid, "the live instance keeps its files")
	assertPortFree(t, cfg.Server.Port)
}

func TestRun_StartupFailureStopsServer(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs an unprivileged POSIX process")
	}
	gid := os.Getgid() + 1

	files := &pidfile.Config{Directory: t.TempDir()}
	cfg := config.Default()
	cfg.Server.Port = freePort(t)
	cfg.Server.ProcessFiles = files
	cfg.Startup.GID = &gid

	err := Run(1, cfg, nopCoreLogger(), logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "failed to apply startup configuration")

	assertPortFree(t, cfg.Server.Port)
	_, err = pidfile.NewManager(*files, logging.NewNopLogger()).ReadPID()
	assert.Error(t, err, "process files are released")
}

func TestRun_ServesUntilRunDuration(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("process files use POSIX liveness checks")
	}
	files := &pidfile.Config{Directory: t.TempDir()}
	manager := pidfile.NewManager(*files, logging.NewNopLogger())
	cfg := config.Default()
	cfg.Server.Port = freePort(t)
	cfg.Server.ProcessFiles = files

	done := make(chan error, 1)
	go func() {
		done <- Run(2, cfg, nopCoreLogger(), logging.NewNopLogger())
	}()

	client, hangUp := dial(t, cfg.Server.Port)
	pid, err := client.GetPID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	hangUp()

	port, err := manager.ReadPort()
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.Port, port)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not stop after its run duration")
	}
	assertPortFree(t, cfg.Server.Port)
	_, err = manager.ReadPID()
	assert.Error(t, err)
}
