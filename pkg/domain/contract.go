package domain

import (
	"context"

	"github.com/core-tools/hsu-sys/pkg/apparmor"
	"github.com/core-tools/hsu-sys/pkg/rlimits"
)

// Contract is the operation surface offered to a host, in-process or over
// the control transport. Setters return the value the OS reports afterwards.
type Contract interface {
	Status(ctx context.Context) (string, error)

	Kill(ctx context.Context, pid int, signal int) error
	GetUID(ctx context.Context) (int, error)
	SetUID(ctx context.Context, uid int) (int, error)
	GetGID(ctx context.Context) (int, error)
	SetGID(ctx context.Context, gid int) (int, error)
	GetPID(ctx context.Context) (int, error)
	GetPPID(ctx context.Context) (int, error)
	GetPGID(ctx context.Context) (int, error)
	SetPGID(ctx context.Context, pgid int) (int, error)
	GetPriority(ctx context.Context) (int, error)
	SetPriority(ctx context.Context, priority int) (int, error)

	SetRlimits(ctx context.Context, values []float64) error
	GetRlimits(ctx context.Context) ([]rlimits.Limit, error)

	ChangeProfile(ctx context.Context, profile string) error
	AppArmorEnabled(ctx context.Context) (enabled bool, supported bool, err error)
	AppArmorContext(ctx context.Context) (apparmor.SecurityContext, bool, error)

	SafeBuild(ctx context.Context) (bool, error)
	Interactive(ctx context.Context) (bool, error)
	SetInteractive(ctx context.Context, interactive bool) (bool, error)
	SetTempDir(ctx context.Context, path string) (string, error)
}
