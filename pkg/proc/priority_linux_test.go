//go:build linux

package proc

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// pinThreads parks n goroutines on their own OS threads until release is called
func pinThreads(t *testing.T, n int) (release func()) {
	t.Helper()
	stop := make(chan struct{})
	var started, stopped sync.WaitGroup
	started.Add(n)
	stopped.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer stopped.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			started.Done()
			<-stop
		}()
	}
	started.Wait()
	return func() {
		close(stop)
		stopped.Wait()
	}
}

func TestSetpriority_AppliesToEveryThread(t *testing.T) {
	release := pinThreads(t, 4)
	defer release()

	current := Getpriority()
	if current >= 19 {
		t.Skip("already at the lowest priority")
	}

	got, err := Setpriority(current + 1)
	require.NoError(t, err)
	assert.Equal(t, current+1, got)

	tids, err := taskIDs()
	require.NoError(t, err)
	require.Greater(t, len(tids), 4)
	for _, tid := range tids {
		prio, err := unix.Getpriority(unix.PRIO_PROCESS, tid)
		if err == unix.ESRCH {
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, got, 20-prio, "thread %d", tid)
	}
}

func TestSetpriority_TaskListUnavailable(t *testing.T) {
	old := taskDir
	taskDir = t.TempDir() + "/missing"
	defer func() { taskDir = old }()

	_, err := Setpriority(Getpriority())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setpriority() failed")
}
