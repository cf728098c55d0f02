package server

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	corelogging "github.com/core-tools/hsu-core/pkg/logging"

	"github.com/core-tools/hsu-sys/pkg/config"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/pidfile"
)

// Run validates cfg, starts the server, applies the startup section and
// blocks until a termination signal arrives or runDuration seconds pass.
func Run(runDuration int, cfg *config.Config, coreLogger corelogging.Logger, logger logging.Logger) error {
	logger.Infof("Server runner starting...")

	if err := config.ValidateConfig(cfg); err != nil {
		return errors.NewValidationError("configuration validation failed", err)
	}

	ctx := context.Background()
	if runDuration > 0 {
		duration := time.Duration(runDuration) * time.Second
		logger.Infof("Using RUN DURATION of %v", duration)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	if cfg.Server.ProcessFiles != nil {
		processFiles := pidfile.NewManager(*cfg.Server.ProcessFiles, logger)
		if err := processFiles.Acquire(os.Getpid(), cfg.Server.Port); err != nil {
			return err
		}
		defer func() {
			if err := processFiles.Release(); err != nil {
				logger.Warnf("Failed to remove process files: %v", err)
			}
		}()
	}

	server, err := NewServer(Options{Port: cfg.Server.Port}, coreLogger, logger)
	if err != nil {
		return err
	}
	defer server.Stop(context.Background())

	// The listener is bound by now, so dropping privileges below does not
	// prevent serving on a privileged port.
	if err := cfg.Startup.Apply(ctx, server.Contract(), logger); err != nil {
		return errors.NewConfigurationError("failed to apply startup configuration", err)
	}

	server.Start(ctx)

	sig := make(chan os.Signal, 1)
	if runtime.GOOS == "windows" {
		signal.Notify(sig)
	} else {
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	}
	defer signal.Stop(sig)

	logger.Infof("Server is ready")

	select {
	case receivedSignal := <-sig:
		logger.Infof("Server runner received signal: %v", receivedSignal)
	case <-ctx.Done():
		logger.Infof("Server runner timed out")
	}

	server.Stop(context.Background())

	logger.Infof("Server runner stopped")
	return nil
}
