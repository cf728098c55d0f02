package main

import (
	"fmt"
	"os"

	coreLogging "github.com/core-tools/hsu-core/pkg/logging"

	"github.com/core-tools/hsu-sys/pkg/config"
	sysLogging "github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/server"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Port        int    `long:"port" description:"port to listen on, overrides the configuration file"`
	Config      string `long:"config" description:"path to the YAML configuration file"`
	RunDuration int    `long:"run-duration" description:"stop after this many seconds, 0 runs until signalled"`
	LogLevel    string `long:"log-level" description:"debug, info, warn or error"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s-server , ", module)
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if opts.Config != "" {
		cfg, err = config.LoadConfigFromFile(opts.Config)
		if err != nil {
			fmt.Printf("Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.LogLevel != "" {
		cfg.Server.Log.Level = opts.LogLevel
	}

	logger, sync, err := sysLogging.NewZapLogger("", cfg.Server.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer sync()

	logger.Infof("opts: %+v", opts)
	logger.Infof("Starting...")

	coreLogger := coreLogging.NewLogger(
		logPrefix("hsu-core"), coreLogging.LogFuncs{
			Debugf: logger.Debugf,
			Infof:  logger.Infof,
			Warnf:  logger.Warnf,
			Errorf: logger.Errorf,
		})
	sysLogger := sysLogging.WithPrefix(logger, logPrefix("hsu-sys"))

	if err := server.Run(opts.RunDuration, cfg, coreLogger, sysLogger); err != nil {
		logger.Errorf("Server failed: %v", err)
		sync()
		os.Exit(1)
	}
}
