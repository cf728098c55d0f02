package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/core-tools/hsu-sys/pkg/apparmor"
	"github.com/core-tools/hsu-sys/pkg/capabilities"
	"github.com/core-tools/hsu-sys/pkg/hostenv"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/proc"
	"github.com/core-tools/hsu-sys/pkg/rlimits"
)

type HandlerOptions struct {
	// Host defaults to a Host built from the compiled-in capabilities
	Host *hostenv.Host
	// Rlimits defaults to an applier issuing real system calls
	Rlimits *rlimits.Applier
}

// NewSysHandler returns the Contract implementation that talks to the OS.
// Calls are serialised because they mutate process-wide state.
func NewSysHandler(options HandlerOptions, logger logging.Logger) Contract {
	if options.Host == nil {
		options.Host = hostenv.New(capabilities.Current())
	}
	if options.Rlimits == nil {
		options.Rlimits = rlimits.NewApplier(nil)
	}
	return &sysHandler{
		host:    options.Host,
		rlimits: options.Rlimits,
		logger:  logger,
	}
}

type sysHandler struct {
	host    *hostenv.Host
	rlimits *rlimits.Applier
	logger  logging.Logger
	mutex   sync.Mutex
}

func (h *sysHandler) Status(ctx context.Context) (string, error) {
	caps := capabilities.Current()
	return fmt.Sprintf("hsu-sys: OK, pid: %d, pgid: %d, sid: %d, safebuild: %t, apparmor: %t",
		proc.Getpid(), proc.Getpgid(), proc.Getsid(), h.host.SafeBuild(), caps.AppArmor), nil
}

func (h *sysHandler) Kill(ctx context.Context, pid int, signal int) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.logger.Infof("Sending signal %s to PID %d", proc.SignalName(signal), pid)
	if err := proc.Kill(pid, signal); err != nil {
		h.logger.Errorf("Kill failed, pid: %d, signal: %d: %v", pid, signal, err)
		return err
	}
	return nil
}

func (h *sysHandler) GetUID(ctx context.Context) (int, error) {
	return proc.Getuid(), nil
}

func (h *sysHandler) SetUID(ctx context.Context, uid int) (int, error) {
	return h.set("uid", uid, proc.Setuid)
}

func (h *sysHandler) GetGID(ctx context.Context) (int, error) {
	return proc.Getgid(), nil
}

func (h *sysHandler) SetGID(ctx context.Context, gid int) (int, error) {
	return h.set("gid", gid, proc.Setgid)
}

func (h *sysHandler) GetPID(ctx context.Context) (int, error) {
	return proc.Getpid(), nil
}

func (h *sysHandler) GetPPID(ctx context.Context) (int, error) {
	return proc.Getppid(), nil
}

func (h *sysHandler) GetPGID(ctx context.Context) (int, error) {
	return proc.Getpgid(), nil
}

func (h *sysHandler) SetPGID(ctx context.Context, pgid int) (int, error) {
	return h.set("pgid", pgid, proc.Setpgid)
}

func (h *sysHandler) GetPriority(ctx context.Context) (int, error) {
	return proc.Getpriority(), nil
}

func (h *sysHandler) SetPriority(ctx context.Context, priority int) (int, error) {
	return h.set("priority", priority, proc.Setpriority)
}

func (h *sysHandler) set(what string, value int, setter func(int) (int, error)) (int, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.logger.Infof("Setting %s to %d", what, value)
	got, err := setter(value)
	if err != nil {
		h.logger.Errorf("Setting %s to %d failed: %v", what, value, err)
		return got, err
	}
	if got != value {
		h.logger.Warnf("OS reports %s %d after requesting %d", what, got, value)
	}
	return got, nil
}

func (h *sysHandler) SetRlimits(ctx context.Context, values []float64) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.logger.Infof("Applying rlimits: %v", values)
	if err := h.rlimits.Set(values); err != nil {
		h.logger.Errorf("Applying rlimits failed: %v", err)
		return err
	}
	return nil
}

func (h *sysHandler) GetRlimits(ctx context.Context) ([]rlimits.Limit, error) {
	return h.rlimits.Get()
}

func (h *sysHandler) ChangeProfile(ctx context.Context, profile string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !apparmor.Supported() {
		h.logger.Debugf("AppArmor not compiled in, ignoring profile %q", profile)
		return nil
	}
	h.logger.Infof("Changing AppArmor profile to %q", profile)
	if err := apparmor.ChangeProfile(profile); err != nil {
		h.logger.Errorf("Changing AppArmor profile failed: %v", err)
		return err
	}
	return nil
}

func (h *sysHandler) AppArmorEnabled(ctx context.Context) (bool, bool, error) {
	enabled, supported := apparmor.IsEnabled()
	return enabled, supported, nil
}

func (h *sysHandler) AppArmorContext(ctx context.Context) (apparmor.SecurityContext, bool, error) {
	return apparmor.Context()
}

func (h *sysHandler) SafeBuild(ctx context.Context) (bool, error) {
	return h.host.SafeBuild(), nil
}

func (h *sysHandler) Interactive(ctx context.Context) (bool, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.host.Interactive(), nil
}

func (h *sysHandler) SetInteractive(ctx context.Context, interactive bool) (bool, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	got, err := h.host.SetInteractive(interactive)
	if err != nil {
		h.logger.Warnf("Setting interactive mode rejected: %v", err)
		return got, err
	}
	h.logger.Infof("Interactive mode set to %t", got)
	return got, nil
}

func (h *sysHandler) SetTempDir(ctx context.Context, path string) (string, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	got, err := h.host.SetTempDir(path)
	if err != nil {
		h.logger.Warnf("Setting temp directory rejected: %v", err)
		return got, err
	}
	h.logger.Infof("Temp directory set to %s", got)
	return got, nil
}
