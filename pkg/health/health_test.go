package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ferry/pkg/command"
)

// scriptedProbe returns the scripted statuses in order and records the
// timeout each attempt ran under.
func scriptedProbe(t *testing.T, statuses []command.Status, timeouts *[]time.Duration) Probe {
	calls := 0
	return func(_ context.Context, timeout time.Duration) (command.Status, error) {
		require.Less(t, calls, len(statuses), "probe called more often than scripted")
		status := statuses[calls]
		calls++
		*timeouts = append(*timeouts, timeout)
		return status, nil
	}
}

func newFakeGate(config Config) (*Gate, *[]time.Duration) {
	gate := NewGate(config)
	current := time.Unix(0, 0)
	slept := &[]time.Duration{}
	gate.now = func() time.Time { return current }
	gate.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		current = current.Add(d)
		return nil
	}
	return gate, slept
}

func TestWaitImmediateSuccess(t *testing.T) {
	gate, slept := newFakeGate(DefaultConfig())

	var timeouts []time.Duration
	probe := scriptedProbe(t, []command.Status{command.StatusSuccess}, &timeouts)

	require.NoError(t, gate.Wait(context.Background(), probe))
	assert.Equal(t, []time.Duration{5 * time.Second}, timeouts)
	assert.Empty(t, *slept)
}

func TestWaitRetriesAfterFailure(t *testing.T) {
	gate, slept := newFakeGate(DefaultConfig())

	var timeouts []time.Duration
	probe := scriptedProbe(t, []command.Status{
		command.StatusFailure,
		command.StatusFailure,
		command.StatusSuccess,
	}, &timeouts)

	require.NoError(t, gate.Wait(context.Background(), probe))
	// Failures keep the probe window constant.
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, timeouts)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)
}

func TestWaitDoublesWindowOnTimeout(t *testing.T) {
	gate, slept := newFakeGate(DefaultConfig())

	var timeouts []time.Duration
	probe := scriptedProbe(t, []command.Status{
		command.StatusTimeout,
		command.StatusFailure,
		command.StatusTimeout,
		command.StatusSuccess,
	}, &timeouts)

	require.NoError(t, gate.Wait(context.Background(), probe))
	// Windows: 5s, timeout doubles to 10s, failure keeps 10s, doubles to 20s.
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}, timeouts[:3])
	assert.Equal(t, 20*time.Second, timeouts[3])
	// The sleep after a timeout uses the already doubled window.
	assert.Equal(t, []time.Duration{
		10 * time.Second,
		10 * time.Second,
		20 * time.Second,
	}, *slept)
}

func TestWaitCapExceeded(t *testing.T) {
	gate, _ := newFakeGate(Config{Base: 5 * time.Second, Cap: 8 * time.Second})

	var timeouts []time.Duration
	probe := scriptedProbe(t, []command.Status{
		command.StatusFailure,
		command.StatusFailure,
		command.StatusFailure,
	}, &timeouts)

	err := gate.Wait(context.Background(), probe)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapExceeded)
	// First probe at t=0, sleep to t=5s, second probe, then the cap check
	// fires before the second sleep completes another round.
	assert.Len(t, timeouts, 2)
}

func TestWaitUnboundedWithoutCap(t *testing.T) {
	gate, _ := newFakeGate(Config{Base: 5 * time.Second})

	statuses := make([]command.Status, 100)
	for i := range statuses {
		statuses[i] = command.StatusFailure
	}
	statuses = append(statuses, command.StatusSuccess)

	var timeouts []time.Duration
	require.NoError(t, gate.Wait(context.Background(), scriptedProbe(t, statuses, &timeouts)))
	assert.Len(t, timeouts, 101)
}

func TestWaitPropagatesProbeError(t *testing.T) {
	gate, _ := newFakeGate(DefaultConfig())

	probeErr := errors.New("engine unavailable")
	err := gate.Wait(context.Background(), func(context.Context, time.Duration) (command.Status, error) {
		return command.StatusFailure, probeErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, probeErr)
}

func TestWaitStopsOnCancelledContext(t *testing.T) {
	gate := NewGate(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.Wait(ctx, func(context.Context, time.Duration) (command.Status, error) {
		return command.StatusFailure, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewGateDefaultsBase(t *testing.T) {
	gate := NewGate(Config{})
	assert.Equal(t, 5*time.Second, gate.config.Base)
}
