package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/labels"
	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/types"
)

// Runner is the subprocess surface the engine is driven through
type Runner interface {
	StatusOK(ctx context.Context, cmd command.Cmd) error
	StatusBool(ctx context.Context, cmd command.Cmd) (bool, error)
	StatusWithinTime(ctx context.Context, cmd command.Cmd, timeout time.Duration) (command.Status, error)
	Output(ctx context.Context, cmd command.Cmd) ([]byte, error)
	OutputJSON(ctx context.Context, cmd command.Cmd, v any) error
}

// CLI drives a podman-compatible container engine through its command line.
// The engine command is configurable (program plus leading arguments), so
// variants like `podman --remote` work unchanged.
type CLI struct {
	program string
	args    []string
	runner  Runner
	logger  zerolog.Logger
}

// New creates a CLI for the given engine command line
func New(runner Runner, engineCommand []string) (*CLI, error) {
	if len(engineCommand) == 0 {
		return nil, errors.New("engine command is empty")
	}
	return &CLI{
		program: engineCommand[0],
		args:    engineCommand[1:],
		runner:  runner,
		logger:  log.WithComponent("engine"),
	}, nil
}

// Build builds the given context and returns the resulting image ID
func (c *CLI) Build(ctx context.Context, buildContext string) (string, error) {
	out, err := c.runner.Output(ctx, c.cmd("build", "--quiet", "--", buildContext))
	if err != nil {
		return "", fmt.Errorf("failed to build context %q: %w", buildContext, err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", fmt.Errorf("engine reported no image ID for context %q", buildContext)
	}
	return id, nil
}

// Save writes the image as an OCI archive at path
func (c *CLI) Save(ctx context.Context, imageID, path string) error {
	return c.runner.StatusOK(ctx, c.cmd(
		"save", "--format", "oci-archive", "--output", path, "--", imageID))
}

// Load imports the image archive at path into the engine
func (c *CLI) Load(ctx context.Context, path string) error {
	return c.runner.StatusOK(ctx, c.cmd("load", "--input", path))
}

// Images enumerates all engine images with their deployment intent decoded
func (c *CLI) Images(ctx context.Context) ([]types.Image, error) {
	var raws []labels.RawImage
	if err := c.runner.OutputJSON(ctx, c.cmd("images", "--format", "json"), &raws); err != nil {
		return nil, fmt.Errorf("failed to enumerate images: %w", err)
	}

	images := make([]types.Image, 0, len(raws))
	for _, raw := range raws {
		image, err := labels.Parse(raw)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

// CreateContainer creates, without starting, the container a change
// describes
func (c *CLI) CreateContainer(ctx context.Context, change types.Change) error {
	args := []string{"create"}
	if change.HealthCheck != "" {
		args = append(args, "--health-cmd", change.HealthCheck)
	}
	args = append(args, "--name", change.ContainerName)
	for _, network := range change.Networks {
		args = append(args, "--network", network)
	}
	for _, mapping := range change.PortMappings {
		args = append(args, "--publish", mapping)
	}
	for _, mount := range change.VolumeMounts {
		args = append(args, "--volume", mount)
	}
	args = append(args, "--", change.ImageID)

	return c.runner.StatusOK(ctx, c.cmd(args...))
}

// RemoveContainer removes the named, already stopped container
func (c *CLI) RemoveContainer(ctx context.Context, name string) error {
	return c.runner.StatusOK(ctx, c.cmd("rm", "--", name))
}

// NetworkExists reports whether the named network exists
func (c *CLI) NetworkExists(ctx context.Context, name string) (bool, error) {
	return c.runner.StatusBool(ctx, c.cmd("network", "exists", "--", name))
}

// CreateNetwork creates the named network
func (c *CLI) CreateNetwork(ctx context.Context, name string) error {
	return c.runner.StatusOK(ctx, c.cmd("network", "create", "--", name))
}

// RunHealthcheck runs the container's declared health check bounded by
// timeout
func (c *CLI) RunHealthcheck(ctx context.Context, name string, timeout time.Duration) (command.Status, error) {
	return c.runner.StatusWithinTime(ctx, c.cmd("healthcheck", "run", name), timeout)
}

// GenerateUnits generates service unit files for the named container into
// dir. Unit files are written into the working directory, hence InDir.
func (c *CLI) GenerateUnits(ctx context.Context, name, dir string) error {
	return c.runner.StatusOK(ctx, c.cmd(
		"generate", "systemd", "--files", "--name", "--restart-policy", "always", "--", name).InDir(dir))
}

// Prune releases unreferenced images, networks, and, when volumes is set,
// anonymous volumes
func (c *CLI) Prune(ctx context.Context, volumes bool) error {
	c.logger.Info().Bool("volumes", volumes).Msg("pruning unreferenced engine state")
	args := []string{"system", "prune", "--all", "--force"}
	if volumes {
		args = append(args, "--volumes")
	}
	return c.runner.StatusOK(ctx, c.cmd(args...))
}

func (c *CLI) cmd(args ...string) command.Cmd {
	all := make([]string, 0, len(c.args)+len(args))
	all = append(all, c.args...)
	all = append(all, args...)
	return command.New(c.program, all...)
}
