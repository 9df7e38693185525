package applier

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/health"
	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/types"
)

// Engine is the subset of container-engine operations the applier drives
type Engine interface {
	CreateContainer(ctx context.Context, change types.Change) error
	RemoveContainer(ctx context.Context, name string) error
	NetworkExists(ctx context.Context, name string) (bool, error)
	CreateNetwork(ctx context.Context, name string) error
	GenerateUnits(ctx context.Context, name, dir string) error
	RunHealthcheck(ctx context.Context, name string, timeout time.Duration) (command.Status, error)
}

// Supervisor is the unit-manager surface the applier drives
type Supervisor interface {
	Dir() string
	EnsureDir() error
	EnableNow(ctx context.Context, unit string) error
	DisableNow(ctx context.Context, unit string) error
	RemoveUnit(unit string) error
}

// Gate waits for a freshly started container to report healthy
type Gate interface {
	Wait(ctx context.Context, probe health.Probe) error
}

// Applier executes planned container changes one at a time
type Applier struct {
	engine     Engine
	supervisor Supervisor
	gate       Gate
	logger     zerolog.Logger
}

// New creates an applier
func New(engine Engine, supervisor Supervisor, gate Gate) *Applier {
	return &Applier{
		engine:     engine,
		supervisor: supervisor,
		gate:       gate,
		logger:     log.WithComponent("applier"),
	}
}

// Apply executes one change by dispatching on its operator
func (a *Applier) Apply(ctx context.Context, change types.Change) error {
	logger := a.logger.With().
		Str("container", change.ContainerName).
		Str("digest", change.ImageDigest.String()).
		Logger()

	switch change.Operator {
	case types.OperatorAdd:
		logger.Info().Msg("adding container")
		return a.add(ctx, change)
	case types.OperatorKeep:
		logger.Info().Msg("keeping container")
		return nil
	case types.OperatorRemove:
		logger.Info().Msg("removing container")
		return a.remove(ctx, change)
	default:
		return fmt.Errorf("unknown change operator %d for container %q",
			change.Operator, change.ContainerName)
	}
}

// add creates the container, puts it under unit supervision, starts it, and
// waits for it to report healthy when its image declares a health check.
func (a *Applier) add(ctx context.Context, change types.Change) error {
	for _, network := range change.Networks {
		if err := a.ensureNetwork(ctx, network); err != nil {
			return err
		}
	}

	if err := a.engine.CreateContainer(ctx, change); err != nil {
		return fmt.Errorf("failed to create container %q: %w", change.ContainerName, err)
	}

	if err := a.supervisor.EnsureDir(); err != nil {
		return err
	}
	if err := a.engine.GenerateUnits(ctx, change.ContainerName, a.supervisor.Dir()); err != nil {
		return fmt.Errorf("failed to generate unit for container %q: %w", change.ContainerName, err)
	}
	if err := a.supervisor.EnableNow(ctx, change.UnitName()); err != nil {
		return fmt.Errorf("failed to enable unit %q: %w", change.UnitName(), err)
	}

	if change.HealthCheck == "" {
		return nil
	}
	probe := func(ctx context.Context, timeout time.Duration) (command.Status, error) {
		return a.engine.RunHealthcheck(ctx, change.ContainerName, timeout)
	}
	if err := a.gate.Wait(ctx, probe); err != nil {
		return fmt.Errorf("container %q did not pass its health gate: %w", change.ContainerName, err)
	}
	return nil
}

// remove stops the unit, deletes its file, and removes the container
func (a *Applier) remove(ctx context.Context, change types.Change) error {
	unit := change.UnitName()
	if err := a.supervisor.DisableNow(ctx, unit); err != nil {
		return fmt.Errorf("failed to disable unit %q: %w", unit, err)
	}
	if err := a.supervisor.RemoveUnit(unit); err != nil {
		return err
	}
	if err := a.engine.RemoveContainer(ctx, change.ContainerName); err != nil {
		return fmt.Errorf("failed to remove container %q: %w", change.ContainerName, err)
	}
	return nil
}

// ensureNetwork creates the network when the engine reports it absent. Any
// probe outcome other than a clean yes or no is fatal.
func (a *Applier) ensureNetwork(ctx context.Context, network string) error {
	exists, err := a.engine.NetworkExists(ctx, network)
	if err != nil {
		return fmt.Errorf("failed to probe network %q: %w", network, err)
	}
	if exists {
		return nil
	}

	a.logger.Info().Str("network", network).Msg("creating network")
	if err := a.engine.CreateNetwork(ctx, network); err != nil {
		return fmt.Errorf("failed to create network %q: %w", network, err)
	}
	return nil
}
