package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dooshek/clipd/internal/logger"
)

// ErrConfigNotFound is returned when a configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// ErrProcessAlreadyRunning is returned when the clipd process is already running
var ErrProcessAlreadyRunning = errors.New("clipd process is already running")

// FileOps interface defines operations for managing files in the clipd config directory
type FileOps interface {
	// GetConfigDir returns the full path to the clipd config directory
	GetConfigDir() string

	// GetDatabasePath returns the full path to the history database file
	GetDatabasePath() string

	// SaveConfig saves data to a file in the config directory
	SaveConfig(filename string, data []byte) error

	// LoadConfig loads data from a file in the config directory
	LoadConfig(filename string) ([]byte, error)

	// EnsureDirectories creates necessary directories if they don't exist
	EnsureDirectories() error

	// SavePID saves the current process ID to a file
	SavePID() error

	// CheckPID checks if another instance is running
	// Returns ErrProcessAlreadyRunning if another instance is running
	CheckPID() error

	// CleanupPID removes the PID file
	CleanupPID() error
}

// DefaultFileOps implements FileOps interface
type DefaultFileOps struct {
	configDir string
}

// NewDefaultFileOps creates a new DefaultFileOps instance
func NewDefaultFileOps() (*DefaultFileOps, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &DefaultFileOps{
		configDir: filepath.Join(homeDir, ".config", "clipd"),
	}, nil
}

func (f *DefaultFileOps) GetConfigDir() string {
	return f.configDir
}

func (f *DefaultFileOps) GetDatabasePath() string {
	return filepath.Join(f.configDir, "db.json")
}

func (f *DefaultFileOps) SaveConfig(filename string, data []byte) error {
	path := filepath.Join(f.configDir, filename)
	return os.WriteFile(path, data, 0o644)
}

func (f *DefaultFileOps) LoadConfig(filename string) ([]byte, error) {
	path := filepath.Join(f.configDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}
	return os.ReadFile(path)
}

// WriteFileAtomic writes to a temp file in the target directory and renames it
// over path. Rename within one filesystem is atomic, so readers never observe a
// truncated database.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (f *DefaultFileOps) EnsureDirectories() error {
	if err := os.MkdirAll(f.configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

func (f *DefaultFileOps) getPIDFilePath() string {
	return filepath.Join(f.configDir, "clipd.pid")
}

func (f *DefaultFileOps) SavePID() error {
	pidFile := f.getPIDFilePath()
	pid := os.Getpid()
	return os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), 0o644)
}

func (f *DefaultFileOps) CheckPID() error {
	pidFile := f.getPIDFilePath()

	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // PID file doesn't exist, daemon is not running
		}
		return fmt.Errorf("error reading PID file: %w", err)
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid PID in file: %w", err)
	}

	// Check if process exists by sending signal 0
	process, err := os.FindProcess(pid)
	if err != nil {
		return nil // Process doesn't exist
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return ErrProcessAlreadyRunning
	}

	// If we get here, the process doesn't exist but the PID file does
	logger.Debug("Found stale PID file, will be overwritten")
	return nil
}

func (f *DefaultFileOps) CleanupPID() error {
	return os.Remove(f.getPIDFilePath())
}
