package main

import (
	"context"
	"fmt"
	"os"
	"time"

	sprintfLogging "github.com/core-tools/hsu-core/pkg/logging/sprintf"

	coreControl "github.com/core-tools/hsu-core/pkg/control"
	coreDomain "github.com/core-tools/hsu-core/pkg/domain"
	coreLogging "github.com/core-tools/hsu-core/pkg/logging"

	sysControl "github.com/core-tools/hsu-sys/pkg/control"
	sysDomain "github.com/core-tools/hsu-sys/pkg/domain"
	sysLogging "github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/pidfile"

	flags "github.com/jessevdk/go-flags"
)

var opts struct {
	ServerPath string `long:"server" description:"path to the server executable"`
	AttachPort int    `long:"port" description:"port to attach to the server"`
	RunDir     string `long:"run-dir" description:"read the port from the server's port file in this directory"`
	Verbose    bool   `short:"v" long:"verbose" description:"log connection progress"`

	Status          statusCommand          `command:"status" description:"show server status"`
	Kill            killCommand            `command:"kill" description:"send a signal to a process"`
	UID             uidCommand             `command:"uid" description:"get or set the real user ID"`
	GID             gidCommand             `command:"gid" description:"get or set the real group ID"`
	PID             pidCommand             `command:"pid" description:"print the server process ID"`
	PPID            ppidCommand            `command:"ppid" description:"print the server parent process ID"`
	PGID            pgidCommand            `command:"pgid" description:"get or set the process group ID"`
	Priority        priorityCommand        `command:"priority" description:"get or set the scheduling priority"`
	GetRlimits      getRlimitsCommand      `command:"getrlimits" description:"print resource limits"`
	SetRlimits      setRlimitsCommand      `command:"setrlimits" description:"set resource limits"`
	ChangeProfile   changeProfileCommand   `command:"change-profile" description:"switch AppArmor profile"`
	AppArmorEnabled appArmorEnabledCommand `command:"apparmor-enabled" description:"report whether AppArmor is enabled"`
	AppArmorContext appArmorContextCommand `command:"apparmor-context" description:"print the AppArmor confinement"`
	SafeBuild       safeBuildCommand       `command:"safebuild" description:"report whether the server is a safe build"`
	Interactive     interactiveCommand     `command:"interactive" description:"get or set interactive mode"`
	TempDir         tempDirCommand         `command:"tempdir" description:"set the temporary directory"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s-client , ", module)
}

// connect attaches to the server and waits until it answers ping
func connect(ctx context.Context) (sysDomain.Contract, error) {
	if opts.ServerPath == "" && opts.AttachPort == 0 && opts.RunDir != "" {
		processFiles := pidfile.NewManager(pidfile.Config{Directory: opts.RunDir}, sysLogging.NewNopLogger())
		port, err := processFiles.ReadPort()
		if err != nil {
			return nil, err
		}
		opts.AttachPort = port
	}
	if opts.ServerPath == "" && opts.AttachPort == 0 {
		return nil, fmt.Errorf("server path, attach port or run directory is required")
	}

	logger := sprintfLogging.NewStdSprintfLogger()

	debugf, infof := logger.Debugf, logger.Infof
	if !opts.Verbose {
		quiet := func(format string, args ...interface{}) {}
		debugf, infof = quiet, quiet
	}

	coreLogger := coreLogging.NewLogger(
		logPrefix("hsu-core"), coreLogging.LogFuncs{
			Debugf: debugf,
			Infof:  infof,
			Warnf:  logger.Warnf,
			Errorf: logger.Errorf,
		})
	sysLogger := sysLogging.NewLogger(
		logPrefix("hsu-sys"), sysLogging.LogFuncs{
			Debugf: debugf,
			Infof:  infof,
			Warnf:  logger.Warnf,
			Errorf: logger.Errorf,
		})

	coreConnectionOptions := coreControl.ConnectionOptions{
		ServerPath: opts.ServerPath,
		AttachPort: opts.AttachPort,
	}
	coreConnection, err := coreControl.NewConnection(coreConnectionOptions, coreLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create core connection: %v", err)
	}

	coreClientGateway := coreControl.NewGRPCClientGateway(coreConnection.GRPC(), coreLogger)

	retryPingOptions := coreDomain.RetryPingOptions{
		RetryAttempts: 10,
		RetryInterval: 1 * time.Second,
	}
	err = coreDomain.RetryPing(ctx, coreClientGateway, retryPingOptions, coreLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to ping server: %v", err)
	}

	return sysControl.NewGRPCClientGateway(coreConnection.GRPC(), sysLogger), nil
}

func main() {
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs(argv)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
