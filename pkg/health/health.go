package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/metrics"
)

// ErrCapExceeded reports that a gate gave up because its overall time bound
// elapsed before the container became healthy.
var ErrCapExceeded = errors.New("health gate cap exceeded")

// Probe runs one health probe bounded by timeout and reports its outcome.
// Implementations wrap the engine's `healthcheck run`.
type Probe func(ctx context.Context, timeout time.Duration) (command.Status, error)

// Config configures the health gate
type Config struct {
	// Base is the initial probe timeout. It doubles on every probe that
	// times out.
	Base time.Duration

	// Cap bounds the gate's total elapsed time. Zero means the gate waits
	// until the container is healthy or externally terminated.
	Cap time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Base: 5 * time.Second,
		Cap:  0,
	}
}

// Gate waits for a freshly started container to report healthy. Probes run
// under an exponentially growing timeout: the window starts at Base, doubles
// whenever a probe times out, and the gate sleeps the current window after
// every unhealthy probe before retrying.
type Gate struct {
	config Config
	logger zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGate creates a health gate with the given configuration
func NewGate(config Config) *Gate {
	if config.Base <= 0 {
		config.Base = DefaultConfig().Base
	}
	return &Gate{
		config: config,
		logger: log.WithComponent("health"),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Wait polls probe until it reports success. Probe failures and timeouts
// stay inside the gate; only probe invocation errors, context cancellation,
// and an exceeded cap escape.
func (g *Gate) Wait(ctx context.Context, probe Probe) error {
	start := g.now()
	timeout := g.config.Base

	for attempt := 1; ; attempt++ {
		if err := g.checkCap(start); err != nil {
			return err
		}

		status, err := probe(ctx, timeout)
		if err != nil {
			return fmt.Errorf("failed to run health probe: %w", err)
		}
		metrics.HealthProbes.WithLabelValues(status.String()).Inc()

		switch status {
		case command.StatusSuccess:
			g.logger.Info().
				Int("attempts", attempt).
				Dur("elapsed", g.now().Sub(start)).
				Msg("container is healthy")
			return nil
		case command.StatusTimeout:
			timeout *= 2
		}

		g.logger.Debug().
			Int("attempt", attempt).
			Str("status", status.String()).
			Dur("next_window", timeout).
			Msg("health probe not passing yet")

		if err := g.checkCap(start); err != nil {
			return err
		}
		if err := g.sleep(ctx, timeout); err != nil {
			return err
		}
	}
}

func (g *Gate) checkCap(start time.Time) error {
	if g.config.Cap <= 0 {
		return nil
	}
	if elapsed := g.now().Sub(start); elapsed >= g.config.Cap {
		return fmt.Errorf("%w: %s elapsed", ErrCapExceeded, elapsed)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
