package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/log"
)

// Runner runs one subprocess to completion.
type Runner interface {
	StatusOK(ctx context.Context, cmd command.Cmd) error
}

// Config describes the channel to one target host
type Config struct {
	// SSHConfig is the ssh client configuration file, passed with -F to
	// both the mirror's remote shell and the reconcile session.
	SSHConfig string

	// User is the login user on the target host.
	User string

	// Host is the target hostname.
	Host string

	// LocalWorkbench is the artifact directory to mirror from.
	LocalWorkbench string

	// RemoteWorkbench is the artifact directory on the target host.
	RemoteWorkbench string

	// RemoteCommand invokes the reconciler on the host (default "ferry").
	RemoteCommand []string

	// DryRun prints both command lines instead of running them.
	DryRun bool
}

// Deployer mirrors the local workbench to a host and triggers
// reconciliation there.
type Deployer struct {
	runner Runner
	config Config
	out    io.Writer
	logger zerolog.Logger
}

// New creates a deployer
func New(runner Runner, config Config) *Deployer {
	if len(config.RemoteCommand) == 0 {
		config.RemoteCommand = []string{"ferry"}
	}
	return &Deployer{
		runner: runner,
		config: config,
		out:    os.Stdout,
		logger: log.WithComponent("transport"),
	}
}

// SetOutput redirects dry-run command printing
func (d *Deployer) SetOutput(out io.Writer) {
	d.out = out
}

// Run mirrors the workbench and reconciles the host. With DryRun set it
// prints the two command lines and runs nothing.
func (d *Deployer) Run(ctx context.Context) error {
	if d.config.DryRun {
		fmt.Fprintln(d.out, d.syncCmd().String())
		fmt.Fprintln(d.out, d.reconcileCmd().String())
		return nil
	}

	if err := d.Sync(ctx); err != nil {
		return err
	}
	return d.RemoteReconcile(ctx)
}

// Sync mirrors the local workbench into the remote one. Entries absent
// locally are deleted remotely, so the reconciler sees exactly the
// artifacts of the last build.
func (d *Deployer) Sync(ctx context.Context) error {
	d.logger.Info().
		Str("host", d.config.Host).
		Str("source", d.config.LocalWorkbench).
		Str("destination", d.config.RemoteWorkbench).
		Msg("mirroring workbench")
	return d.runner.StatusOK(ctx, d.syncCmd())
}

// RemoteReconcile runs the reconciler on the host over ssh, pointing it
// at the synced workbench.
func (d *Deployer) RemoteReconcile(ctx context.Context) error {
	d.logger.Info().
		Str("host", d.config.Host).
		Strs("command", d.config.RemoteCommand).
		Msg("reconciling host")
	return d.runner.StatusOK(ctx, d.reconcileCmd())
}

func (d *Deployer) syncCmd() command.Cmd {
	// The trailing slash makes rsync mirror directory contents, not the
	// directory itself.
	source := strings.TrimSuffix(d.config.LocalWorkbench, "/") + "/"
	destination := fmt.Sprintf("%s@%s:%s", d.config.User, d.config.Host, d.config.RemoteWorkbench)
	return command.New("rsync",
		"--archive",
		"--delete",
		"--rsh", shellquote.Join("ssh", "-F", d.config.SSHConfig),
		"--",
		source,
		destination,
	)
}

func (d *Deployer) reconcileCmd() command.Cmd {
	// env(1) carries the workbench path through the remote shell no
	// matter how the path is quoted.
	tokens := []string{"env", "FERRY_REMOTE_WORKBENCH=" + d.config.RemoteWorkbench}
	tokens = append(tokens, d.config.RemoteCommand...)
	tokens = append(tokens, "reconcile")
	return command.New("ssh",
		"-F", d.config.SSHConfig,
		"-l", d.config.User,
		d.config.Host,
		"--",
		shellquote.Join(tokens...),
	)
}
