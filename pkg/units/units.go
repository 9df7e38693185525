package units

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/log"
)

const systemctl = "systemctl"

// Runner runs the systemctl invocations the supervisor issues
type Runner interface {
	StatusOK(ctx context.Context, cmd command.Cmd) error
}

// UserUnitDir resolves the user-scope unit directory:
// $XDG_CONFIG_HOME/systemd/user when XDG_CONFIG_HOME is set, otherwise
// ~/.config/systemd/user.
func UserUnitDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "systemd", "user"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user"), nil
}

// Supervisor manages the user-scope service units Ferry generates for its
// containers. It owns only units under the container- prefix; nothing else
// in the unit directory is touched.
type Supervisor struct {
	runner Runner
	fs     afero.Fs
	dir    string
	logger zerolog.Logger
}

// NewSupervisor creates a supervisor over the given unit directory
func NewSupervisor(runner Runner, fs afero.Fs, dir string) *Supervisor {
	return &Supervisor{
		runner: runner,
		fs:     fs,
		dir:    dir,
		logger: log.WithComponent("units"),
	}
}

// Dir returns the unit directory the supervisor manages
func (s *Supervisor) Dir() string {
	return s.dir
}

// EnsureDir creates the unit directory if it does not exist yet. Unit
// generation runs with this directory as its working directory and fails
// without it.
func (s *Supervisor) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create unit directory %q: %w", s.dir, err)
	}
	return nil
}

// EnableNow enables the unit and starts it immediately
func (s *Supervisor) EnableNow(ctx context.Context, unit string) error {
	s.logger.Debug().Str("unit", unit).Msg("enabling unit")
	return s.runner.StatusOK(ctx, command.New(systemctl, "--user", "enable", "--now", unit))
}

// DisableNow disables the unit and stops it immediately
func (s *Supervisor) DisableNow(ctx context.Context, unit string) error {
	s.logger.Debug().Str("unit", unit).Msg("disabling unit")
	return s.runner.StatusOK(ctx, command.New(systemctl, "--user", "disable", "--now", unit))
}

// RemoveUnit deletes the unit file from the unit directory
func (s *Supervisor) RemoveUnit(unit string) error {
	path := filepath.Join(s.dir, unit)
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove unit file %q: %w", path, err)
	}
	return nil
}
