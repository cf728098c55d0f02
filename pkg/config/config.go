package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/pidfile"
	"github.com/core-tools/hsu-sys/pkg/rlimits"

	"gopkg.in/yaml.v3"
)

const DefaultPort = 50060

// Config is the top-level structure of the server configuration file
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Startup StartupConfig `yaml:"startup"`
}

type ServerConfig struct {
	Port int               `yaml:"port"`
	Log  logging.ZapConfig `yaml:"log"`

	// ProcessFiles enables PID and port files when set
	ProcessFiles *pidfile.Config `yaml:"process_files,omitempty"`
}

// StartupConfig lists process changes applied once before serving. Unset
// fields leave the corresponding OS state alone.
type StartupConfig struct {
	Rlimits         map[string]LimitValue `yaml:"rlimits,omitempty"`
	Priority        *int                  `yaml:"priority,omitempty"`
	TempDir         string                `yaml:"temp_dir,omitempty"`
	Interactive     *bool                 `yaml:"interactive,omitempty"`
	AppArmorProfile string                `yaml:"apparmor_profile,omitempty"`
	GID             *int                  `yaml:"gid,omitempty"`
	UID             *int                  `yaml:"uid,omitempty"`
}

// LimitValue is a limit from YAML: a number, ".inf" or "unlimited"
type LimitValue float64

func (v *LimitValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rlimit must be a scalar", node.Line)
	}
	if strings.EqualFold(node.Value, "unlimited") {
		*v = LimitValue(math.Inf(1))
		return nil
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("line %d: invalid rlimit %q", node.Line, node.Value)
	}
	*v = LimitValue(f)
	return nil
}

// ParseLimitValue parses a command-line limit such as "4096" or "unlimited"
func ParseLimitValue(s string) (LimitValue, error) {
	switch strings.ToLower(s) {
	case "unlimited", "infinity", "inf", ".inf":
		return LimitValue(math.Inf(1)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid rlimit %q", s), err)
	}
	return LimitValue(f), nil
}

func (v LimitValue) MarshalYAML() (interface{}, error) {
	if math.IsInf(float64(v), 1) {
		return "unlimited", nil
	}
	return float64(v), nil
}

// LoadConfigFromFile reads, defaults and returns the configuration
func LoadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}
	SetDefaults(&config)
	return &config, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var config Config
	SetDefaults(&config)
	return &config
}

func SetDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	defaults := logging.DefaultZapConfig()
	if config.Server.Log.Level == "" {
		config.Server.Log.Level = defaults.Level
	}
	if config.Server.Log.Format == "" {
		config.Server.Log.Format = defaults.Format
	}
	if config.Server.Log.Output == "" {
		config.Server.Log.Output = defaults.Output
	}
}

// ValidateConfig validates the entire configuration structure
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}
	if err := ValidatePort(config.Server.Port); err != nil {
		return errors.NewValidationError("invalid server configuration", err)
	}
	if _, err := logging.ParseLevel(config.Server.Log.Level); err != nil {
		return errors.NewValidationError("invalid server configuration", err)
	}
	if pf := config.Server.ProcessFiles; pf != nil {
		switch pf.Context {
		case "", pidfile.SystemService, pidfile.UserService:
		default:
			return errors.NewValidationError("invalid server configuration", nil).
				WithContext("process_files.context", pf.Context)
		}
	}
	if err := validateStartup(&config.Startup); err != nil {
		return errors.NewValidationError("invalid startup configuration", err)
	}
	return nil
}

func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return errors.NewValidationError("port must be between 1 and 65535", nil).WithContext("port", port)
	}
	return nil
}

func validateStartup(startup *StartupConfig) error {
	if _, err := startup.LimitVector(); err != nil {
		return err
	}
	if startup.Priority != nil && (*startup.Priority < -20 || *startup.Priority > 19) {
		return errors.NewValidationError("priority must be between -20 and 19", nil).
			WithContext("priority", *startup.Priority)
	}
	if startup.UID != nil && *startup.UID < 0 {
		return errors.NewValidationError("uid cannot be negative", nil)
	}
	if startup.GID != nil && *startup.GID < 0 {
		return errors.NewValidationError("gid cannot be negative", nil)
	}
	return nil
}

// LimitVector converts the named limits into the positional vector, or nil
// if none are configured
func (s *StartupConfig) LimitVector() ([]float64, error) {
	if len(s.Rlimits) == 0 {
		return nil, nil
	}
	named := make(map[string]float64, len(s.Rlimits))
	for name, v := range s.Rlimits {
		named[name] = float64(v)
	}
	values, err := rlimits.FromMap(named)
	if err != nil {
		return nil, err
	}
	if err := rlimits.Validate(values); err != nil {
		return nil, err
	}
	return values, nil
}

// Apply performs the startup changes through contract. Privileges are
// dropped last, gid before uid, since both need root.
func (s *StartupConfig) Apply(ctx context.Context, contract domain.Contract, logger logging.Logger) error {
	values, err := s.LimitVector()
	if err != nil {
		return err
	}
	if values != nil {
		if err := contract.SetRlimits(ctx, values); err != nil {
			return err
		}
		logger.Infof("Startup rlimits applied: %d kinds configured", len(s.Rlimits))
	}

	if s.Priority != nil {
		got, err := contract.SetPriority(ctx, *s.Priority)
		if err != nil {
			return err
		}
		logger.Infof("Startup priority: %d", got)
	}

	if s.TempDir != "" {
		if _, err := contract.SetTempDir(ctx, s.TempDir); err != nil {
			return err
		}
		logger.Infof("Startup temp directory: %s", s.TempDir)
	}

	if s.Interactive != nil {
		if _, err := contract.SetInteractive(ctx, *s.Interactive); err != nil {
			return err
		}
		logger.Infof("Startup interactive mode: %t", *s.Interactive)
	}

	if s.AppArmorProfile != "" {
		if err := contract.ChangeProfile(ctx, s.AppArmorProfile); err != nil {
			return err
		}
		logger.Infof("Startup AppArmor profile: %s", s.AppArmorProfile)
	}

	if s.GID != nil {
		got, err := contract.SetGID(ctx, *s.GID)
		if err != nil {
			return err
		}
		logger.Infof("Startup gid: %d", got)
	}

	if s.UID != nil {
		got, err := contract.SetUID(ctx, *s.UID)
		if err != nil {
			return err
		}
		logger.Infof("Startup uid: %d", got)
	}
	return nil
}
