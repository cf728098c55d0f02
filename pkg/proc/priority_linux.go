//go:build linux

package proc

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

var taskDir = "/proc/self/task"

// The raw getpriority syscall reports 20-nice so that the result is never
// negative; libc undoes this and so do we.
func getNice(pid int) (int, error) {
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, pid)
	if err != nil {
		return 0, err
	}
	return 20 - prio, nil
}

// setNice renices every thread of the process. Linux keeps the nice value
// per task, so the pid alone only covers the main thread. Threads started
// during a pass may have cloned the old value, hence the repeat until a pass
// finds no new tid.
func setNice(nice int) error {
	done := make(map[int]bool)
	for pass := 0; pass < 8; pass++ {
		tids, err := taskIDs()
		if err != nil {
			return err
		}
		fresh := 0
		for _, tid := range tids {
			if done[tid] {
				continue
			}
			fresh++
			if err := unix.Setpriority(unix.PRIO_PROCESS, tid, nice); err != nil && err != unix.ESRCH {
				return err
			}
			done[tid] = true
		}
		if fresh == 0 {
			return nil
		}
	}
	return nil
}

func taskIDs() ([]int, error) {
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, err
	}
	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		if tid, err := strconv.Atoi(e.Name()); err == nil {
			tids = append(tids, tid)
		}
	}
	return tids, nil
}
