package applier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/health"
	"github.com/cuemby/ferry/pkg/types"
)

// trace records every collaborator call in order, so tests assert the exact
// sequence a change produces.
type trace struct {
	steps []string
}

func (tr *trace) record(format string, args ...any) {
	tr.steps = append(tr.steps, fmt.Sprintf(format, args...))
}

type fakeEngine struct {
	trace *trace

	networkExists    bool
	networkExistsErr error
	createErr        error
	generateErr      error
	healthStatus     command.Status
	healthErr        error
}

func (f *fakeEngine) CreateContainer(_ context.Context, change types.Change) error {
	f.trace.record("create %s from %s", change.ContainerName, change.ImageID)
	return f.createErr
}

func (f *fakeEngine) RemoveContainer(_ context.Context, name string) error {
	f.trace.record("rm %s", name)
	return nil
}

func (f *fakeEngine) NetworkExists(_ context.Context, name string) (bool, error) {
	f.trace.record("network exists %s", name)
	return f.networkExists, f.networkExistsErr
}

func (f *fakeEngine) CreateNetwork(_ context.Context, name string) error {
	f.trace.record("network create %s", name)
	return nil
}

func (f *fakeEngine) GenerateUnits(_ context.Context, name, dir string) error {
	f.trace.record("generate %s in %s", name, dir)
	return f.generateErr
}

func (f *fakeEngine) RunHealthcheck(_ context.Context, name string, timeout time.Duration) (command.Status, error) {
	f.trace.record("healthcheck %s within %s", name, timeout)
	return f.healthStatus, f.healthErr
}

type fakeSupervisor struct {
	trace *trace

	enableErr error
}

func (f *fakeSupervisor) Dir() string { return "/units" }

func (f *fakeSupervisor) EnsureDir() error {
	f.trace.record("ensure unit dir")
	return nil
}

func (f *fakeSupervisor) EnableNow(_ context.Context, unit string) error {
	f.trace.record("enable %s", unit)
	return f.enableErr
}

func (f *fakeSupervisor) DisableNow(_ context.Context, unit string) error {
	f.trace.record("disable %s", unit)
	return nil
}

func (f *fakeSupervisor) RemoveUnit(unit string) error {
	f.trace.record("remove unit %s", unit)
	return nil
}

type fakeGate struct {
	trace *trace
	err   error
}

func (f *fakeGate) Wait(_ context.Context, _ health.Probe) error {
	f.trace.record("health gate")
	return f.err
}

func newFixture() (*trace, *fakeEngine, *fakeSupervisor, *fakeGate, *Applier) {
	tr := &trace{}
	engine := &fakeEngine{trace: tr, healthStatus: command.StatusSuccess}
	supervisor := &fakeSupervisor{trace: tr}
	gate := &fakeGate{trace: tr}
	return tr, engine, supervisor, gate, New(engine, supervisor, gate)
}

func addChange() types.Change {
	return types.Change{
		Operator:      types.OperatorAdd,
		ContainerName: "web-0",
		ImageID:       "aaa111",
		ImageDigest:   "sha256:d1",
		Networks:      []string{"frontend"},
		HealthCheck:   "curl -fsS localhost/healthz",
	}
}

func TestApplyAddFullSequence(t *testing.T) {
	tr, _, _, _, a := newFixture()

	require.NoError(t, a.Apply(context.Background(), addChange()))

	assert.Equal(t, []string{
		"network exists frontend",
		"network create frontend",
		"create web-0 from aaa111",
		"ensure unit dir",
		"generate web-0 in /units",
		"enable container-web-0.service",
		"health gate",
	}, tr.steps)
}

func TestApplyAddSkipsExistingNetwork(t *testing.T) {
	tr, engine, _, _, a := newFixture()
	engine.networkExists = true

	require.NoError(t, a.Apply(context.Background(), addChange()))

	assert.NotContains(t, tr.steps, "network create frontend")
	assert.Contains(t, tr.steps, "create web-0 from aaa111")
}

func TestApplyAddSkipsGateWithoutHealthCheck(t *testing.T) {
	tr, _, _, _, a := newFixture()

	change := addChange()
	change.HealthCheck = ""
	require.NoError(t, a.Apply(context.Background(), change))

	assert.NotContains(t, tr.steps, "health gate")
}

func TestApplyAddNetworkProbeErrorIsFatal(t *testing.T) {
	tr, engine, _, _, a := newFixture()
	engine.networkExistsErr = errors.New("engine unreachable")

	err := a.Apply(context.Background(), addChange())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frontend")
	assert.Equal(t, []string{"network exists frontend"}, tr.steps)
}

func TestApplyAddStopsAfterCreateFailure(t *testing.T) {
	tr, engine, _, _, a := newFixture()
	engine.networkExists = true
	engine.createErr = errors.New("name already in use")

	err := a.Apply(context.Background(), addChange())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web-0")
	assert.Equal(t, []string{
		"network exists frontend",
		"create web-0 from aaa111",
	}, tr.steps)
}

func TestApplyAddStopsAfterEnableFailure(t *testing.T) {
	tr, engine, supervisor, _, a := newFixture()
	engine.networkExists = true
	supervisor.enableErr = errors.New("systemd unavailable")

	err := a.Apply(context.Background(), addChange())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container-web-0.service")
	assert.NotContains(t, tr.steps, "health gate")
}

func TestApplyAddGateFailureNamesContainer(t *testing.T) {
	_, _, _, gate, a := newFixture()
	gate.err = health.ErrCapExceeded

	err := a.Apply(context.Background(), addChange())
	require.Error(t, err)
	assert.ErrorIs(t, err, health.ErrCapExceeded)
	assert.Contains(t, err.Error(), "web-0")
}

func TestApplyAddProbesThroughEngine(t *testing.T) {
	// A real gate with an immediately healthy container exercises the
	// probe wiring end to end.
	tr := &trace{}
	engine := &fakeEngine{trace: tr, healthStatus: command.StatusSuccess}
	supervisor := &fakeSupervisor{trace: tr}
	a := New(engine, supervisor, health.NewGate(health.DefaultConfig()))

	require.NoError(t, a.Apply(context.Background(), addChange()))
	assert.Contains(t, tr.steps, "healthcheck web-0 within 5s")
}

func TestApplyKeepIsNoOp(t *testing.T) {
	tr, _, _, _, a := newFixture()

	require.NoError(t, a.Apply(context.Background(), types.Change{
		Operator:      types.OperatorKeep,
		ContainerName: "web-0",
		ImageDigest:   "sha256:d1",
	}))

	assert.Empty(t, tr.steps)
}

func TestApplyRemoveSequence(t *testing.T) {
	tr, _, _, _, a := newFixture()

	require.NoError(t, a.Apply(context.Background(), types.Change{
		Operator:      types.OperatorRemove,
		ContainerName: "web-0",
		ImageDigest:   "sha256:d1",
	}))

	assert.Equal(t, []string{
		"disable container-web-0.service",
		"remove unit container-web-0.service",
		"rm web-0",
	}, tr.steps)
}

func TestApplyRemoveStopsAfterDisableFailure(t *testing.T) {
	tr := &trace{}
	disableErr := errors.New("unit not loaded")
	supervisor := &failingDisableSupervisor{
		fakeSupervisor: &fakeSupervisor{trace: tr},
		err:            disableErr,
	}
	a := New(&fakeEngine{trace: tr}, supervisor, &fakeGate{trace: tr})

	err := a.Apply(context.Background(), types.Change{
		Operator:      types.OperatorRemove,
		ContainerName: "web-0",
	})
	require.ErrorIs(t, err, disableErr)
	assert.Equal(t, []string{"disable container-web-0.service"}, tr.steps)
}

type failingDisableSupervisor struct {
	*fakeSupervisor
	err error
}

func (f *failingDisableSupervisor) DisableNow(ctx context.Context, unit string) error {
	f.trace.record("disable %s", unit)
	return f.err
}

func TestApplyUnknownOperator(t *testing.T) {
	_, _, _, _, a := newFixture()

	err := a.Apply(context.Background(), types.Change{
		Operator:      types.Operator(42),
		ContainerName: "web-0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web-0")
}
