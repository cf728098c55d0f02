package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/logging"
	"github.com/core-tools/hsu-sys/pkg/proc"
)

const DefaultAppName = "hsu-sys"

// ServiceContext selects the default run directory
type ServiceContext string

const (
	SystemService ServiceContext = "system"
	UserService   ServiceContext = "user"
)

type Config struct {
	// Directory overrides the run directory derived from Context
	Directory string         `yaml:"directory,omitempty"`
	Context   ServiceContext `yaml:"context,omitempty"`
	AppName   string         `yaml:"app_name,omitempty"`
}

// Manager owns the PID and port files of one server instance
type Manager struct {
	config Config
	logger logging.Logger
}

func NewManager(config Config, logger logging.Logger) *Manager {
	if config.AppName == "" {
		config.AppName = DefaultAppName
	}
	if config.Context == "" {
		config.Context = UserService
	}
	return &Manager{config: config, logger: logger}
}

func (m *Manager) Directory() string {
	if m.config.Directory != "" {
		return m.config.Directory
	}
	switch m.config.Context {
	case SystemService:
		return systemDirectory()
	default:
		return userDirectory()
	}
}

func (m *Manager) PIDFilePath() string {
	return filepath.Join(m.Directory(), m.config.AppName+".pid")
}

func (m *Manager) PortFilePath() string {
	return filepath.Join(m.Directory(), m.config.AppName+".port")
}

// Acquire records pid and port. It fails if the PID file names another
// process that is still running; a stale file is overwritten.
func (m *Manager) Acquire(pid, port int) error {
	pidPath := m.PIDFilePath()

	if existing, err := m.ReadPID(); err == nil && existing != pid {
		running, err := proc.IsRunning(existing)
		if err == nil && running {
			return errors.NewConfigurationError("another instance is running", nil).
				WithContext("pid_file", pidPath).WithContext("pid", existing)
		}
		m.logger.Warnf("Replacing stale PID file, path: %s, pid: %d", pidPath, existing)
	}

	if err := ensureDirectory(m.Directory()); err != nil {
		return err
	}
	if err := writeInt(pidPath, pid); err != nil {
		return errors.NewIOError("failed to write PID file", err).WithContext("pid_file", pidPath)
	}
	portPath := m.PortFilePath()
	if err := writeInt(portPath, port); err != nil {
		return errors.NewIOError("failed to write port file", err).WithContext("port_file", portPath)
	}

	m.logger.Infof("Process files written, pid: %d, port: %d, directory: %s", pid, port, m.Directory())
	return nil
}

// Release removes both files; missing files are not an error
func (m *Manager) Release() error {
	for _, path := range []string{m.PIDFilePath(), m.PortFilePath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.NewIOError("failed to remove process file", err).WithContext("path", path)
		}
	}
	m.logger.Debugf("Process files removed, directory: %s", m.Directory())
	return nil
}

func (m *Manager) ReadPID() (int, error) {
	return readInt(m.PIDFilePath())
}

func (m *Manager) ReadPort() (int, error) {
	return readInt(m.PortFilePath())
}

func writeInt(path string, v int) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", v)), 0644)
}

func readInt(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewNotFoundError("process file not found", err).WithContext("path", path)
		}
		return 0, errors.NewIOError("failed to read process file", err).WithContext("path", path)
	}
	s := strings.TrimSpace(string(content))
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, errors.NewValidationError("invalid process file content", err).
			WithContext("path", path).WithContext("content", s)
	}
	return v, nil
}

func ensureDirectory(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewIOError("failed to create run directory", err).WithContext("directory", dir)
		}
	case err != nil:
		return errors.NewIOError("failed to access run directory", err).WithContext("directory", dir)
	case !info.IsDir():
		return errors.NewValidationError("run directory is not a directory", nil).WithContext("path", dir)
	}
	return nil
}

func systemDirectory() string {
	switch runtime.GOOS {
	case "windows":
		if programData := os.Getenv("PROGRAMDATA"); programData != "" {
			return filepath.Join(programData, DefaultAppName)
		}
		return `C:\ProgramData\` + DefaultAppName
	case "darwin":
		return "/var/run"
	default:
		if _, err := os.Stat("/run"); err == nil {
			return "/run"
		}
		return "/var/run"
	}
}

func userDirectory() string {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return runtimeDir
		}
	}
	return os.TempDir()
}
