package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/labels"
	"github.com/cuemby/ferry/pkg/types"
)

type fakeRunner struct {
	commands []command.Cmd

	err        error
	boolResult bool
	output     []byte
	status     command.Status
	timeout    time.Duration
}

func (f *fakeRunner) StatusOK(_ context.Context, cmd command.Cmd) error {
	f.commands = append(f.commands, cmd)
	return f.err
}

func (f *fakeRunner) StatusBool(_ context.Context, cmd command.Cmd) (bool, error) {
	f.commands = append(f.commands, cmd)
	return f.boolResult, f.err
}

func (f *fakeRunner) StatusWithinTime(_ context.Context, cmd command.Cmd, timeout time.Duration) (command.Status, error) {
	f.commands = append(f.commands, cmd)
	f.timeout = timeout
	return f.status, f.err
}

func (f *fakeRunner) Output(_ context.Context, cmd command.Cmd) ([]byte, error) {
	f.commands = append(f.commands, cmd)
	return f.output, f.err
}

func (f *fakeRunner) OutputJSON(_ context.Context, cmd command.Cmd, v any) error {
	f.commands = append(f.commands, cmd)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal(f.output, v)
}

func newCLI(t *testing.T, runner Runner, engineCommand ...string) *CLI {
	t.Helper()
	if len(engineCommand) == 0 {
		engineCommand = []string{"podman"}
	}
	cli, err := New(runner, engineCommand)
	require.NoError(t, err)
	return cli
}

func lastCommand(t *testing.T, runner *fakeRunner) command.Cmd {
	t.Helper()
	require.NotEmpty(t, runner.commands)
	return runner.commands[len(runner.commands)-1]
}

func TestNewRejectsEmptyCommand(t *testing.T) {
	_, err := New(&fakeRunner{}, nil)
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	runner := &fakeRunner{output: []byte("f2a9c1d4e5b6\n")}
	cli := newCLI(t, runner)

	id, err := cli.Build(context.Background(), "./services/web")
	require.NoError(t, err)
	assert.Equal(t, "f2a9c1d4e5b6", id)

	cmd := lastCommand(t, runner)
	assert.Equal(t, "podman", cmd.Program)
	assert.Equal(t, []string{"build", "--quiet", "--", "./services/web"}, cmd.Args)
}

func TestBuildRejectsEmptyImageID(t *testing.T) {
	runner := &fakeRunner{output: []byte("  \n")}
	cli := newCLI(t, runner)

	_, err := cli.Build(context.Background(), "./services/web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "./services/web")
}

func TestSave(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	require.NoError(t, cli.Save(context.Background(), "f2a9c1", "/workbench/f2a9c1.tar"))

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{
		"save", "--format", "oci-archive", "--output", "/workbench/f2a9c1.tar", "--", "f2a9c1",
	}, cmd.Args)
}

func TestLoad(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	require.NoError(t, cli.Load(context.Background(), "/workbench/f2a9c1.tar"))

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"load", "--input", "/workbench/f2a9c1.tar"}, cmd.Args)
}

func TestImages(t *testing.T) {
	runner := &fakeRunner{output: []byte(`[
		{
			"Id": "aaa111",
			"Digest": "sha256:d1",
			"Containers": 1,
			"Labels": {
				"io.cuemby.ferry.container-names": "web-0,web-1",
				"io.cuemby.ferry.health-check": "curl localhost"
			}
		},
		{
			"Id": "bbb222",
			"Digest": "sha256:d2",
			"Containers": 0,
			"Labels": null
		}
	]`)}
	cli := newCLI(t, runner)

	images, err := cli.Images(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "aaa111", images[0].ID)
	assert.Equal(t, 1, images[0].ContainerCount)
	assert.Equal(t, []string{"web-0", "web-1"}, images[0].Intent.ContainerNames)
	assert.Equal(t, "curl localhost", images[0].Intent.HealthCheck)

	assert.Equal(t, "bbb222", images[1].ID)
	assert.Empty(t, images[1].Intent.ContainerNames)

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"images", "--format", "json"}, cmd.Args)
}

func TestImagesRejectsMalformedLabels(t *testing.T) {
	runner := &fakeRunner{output: []byte(`[
		{"Id": "aaa", "Digest": "sha256:d1", "Containers": 0,
		 "Labels": {"io.cuemby.ferry.container-names": "\"broken"}}
	]`)}
	cli := newCLI(t, runner)

	_, err := cli.Images(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), labels.KeyContainerNames)
}

func TestCreateContainerFullChange(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	err := cli.CreateContainer(context.Background(), types.Change{
		Operator:      types.OperatorAdd,
		ContainerName: "web-0",
		ImageID:       "aaa111",
		ImageDigest:   "sha256:d1",
		Networks:      []string{"frontend", "backend"},
		PortMappings:  []string{"8080:80"},
		VolumeMounts:  []string{"data:/var/lib/app"},
		HealthCheck:   "curl -fsS localhost/healthz",
	})
	require.NoError(t, err)

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{
		"create",
		"--health-cmd", "curl -fsS localhost/healthz",
		"--name", "web-0",
		"--network", "frontend",
		"--network", "backend",
		"--publish", "8080:80",
		"--volume", "data:/var/lib/app",
		"--", "aaa111",
	}, cmd.Args)
}

func TestCreateContainerMinimalChange(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	err := cli.CreateContainer(context.Background(), types.Change{
		ContainerName: "db-0",
		ImageID:       "bbb222",
	})
	require.NoError(t, err)

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"create", "--name", "db-0", "--", "bbb222"}, cmd.Args)
}

func TestRemoveContainer(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	require.NoError(t, cli.RemoveContainer(context.Background(), "web-0"))

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"rm", "--", "web-0"}, cmd.Args)
}

func TestNetworkExists(t *testing.T) {
	runner := &fakeRunner{boolResult: true}
	cli := newCLI(t, runner)

	exists, err := cli.NetworkExists(context.Background(), "frontend")
	require.NoError(t, err)
	assert.True(t, exists)

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"network", "exists", "--", "frontend"}, cmd.Args)
}

func TestCreateNetwork(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	require.NoError(t, cli.CreateNetwork(context.Background(), "frontend"))

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"network", "create", "--", "frontend"}, cmd.Args)
}

func TestRunHealthcheck(t *testing.T) {
	runner := &fakeRunner{status: command.StatusTimeout}
	cli := newCLI(t, runner)

	status, err := cli.RunHealthcheck(context.Background(), "web-0", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, command.StatusTimeout, status)
	assert.Equal(t, 5*time.Second, runner.timeout)

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{"healthcheck", "run", "web-0"}, cmd.Args)
}

func TestGenerateUnits(t *testing.T) {
	runner := &fakeRunner{}
	cli := newCLI(t, runner)

	require.NoError(t, cli.GenerateUnits(context.Background(), "web-0", "/units"))

	cmd := lastCommand(t, runner)
	assert.Equal(t, []string{
		"generate", "systemd", "--files", "--name", "--restart-policy", "always", "--", "web-0",
	}, cmd.Args)
	assert.Equal(t, "/units", cmd.Dir)
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name    string
		volumes bool
		want    []string
	}{
		{
			name:    "with volumes",
			volumes: true,
			want:    []string{"system", "prune", "--all", "--force", "--volumes"},
		},
		{
			name:    "without volumes",
			volumes: false,
			want:    []string{"system", "prune", "--all", "--force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			cli := newCLI(t, runner)

			require.NoError(t, cli.Prune(context.Background(), tt.volumes))
			assert.Equal(t, tt.want, lastCommand(t, runner).Args)
		})
	}
}

func TestEngineCommandWithLeadingArgs(t *testing.T) {
	runner := &fakeRunner{output: []byte("abc\n")}
	cli := newCLI(t, runner, "podman", "--remote")

	_, err := cli.Build(context.Background(), "./web")
	require.NoError(t, err)

	cmd := lastCommand(t, runner)
	assert.Equal(t, "podman", cmd.Program)
	assert.Equal(t, []string{"--remote", "build", "--quiet", "--", "./web"}, cmd.Args)
}

func TestOperationsPropagateRunnerErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("engine exploded")}
	cli := newCLI(t, runner)

	_, buildErr := cli.Build(context.Background(), "./web")
	assert.Error(t, buildErr)
	assert.Error(t, cli.Load(context.Background(), "/x.tar"))
	_, imagesErr := cli.Images(context.Background())
	assert.Error(t, imagesErr)
	assert.Error(t, cli.Prune(context.Background(), true))
}
