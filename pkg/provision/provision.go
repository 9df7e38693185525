package provision

import (
	"context"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/log"
)

// Runner runs one subprocess to completion.
type Runner interface {
	StatusOK(ctx context.Context, cmd command.Cmd) error
}

// Config names the host and the playbook to run against it
type Config struct {
	// SSHConfig is the ssh client configuration file, forwarded to
	// ansible's ssh sessions.
	SSHConfig string

	// Host is the target hostname.
	Host string

	// Playbook is the ansible playbook path.
	Playbook string
}

// Provisioner prepares a host by running a playbook against it.
type Provisioner struct {
	runner Runner
	config Config
	logger zerolog.Logger
}

// New creates a provisioner
func New(runner Runner, config Config) *Provisioner {
	return &Provisioner{
		runner: runner,
		config: config,
		logger: log.WithComponent("provision"),
	}
}

// Run executes the playbook against the host. The host is passed as a
// one-entry inline inventory, so no inventory file is needed.
func (p *Provisioner) Run(ctx context.Context) error {
	p.logger.Info().
		Str("host", p.config.Host).
		Str("playbook", p.config.Playbook).
		Msg("provisioning host")

	return p.runner.StatusOK(ctx, command.New("ansible-playbook",
		"--inventory", ","+p.config.Host,
		"--ssh-common-args", shellquote.Join("-F", p.config.SSHConfig),
		"--",
		p.config.Playbook,
	))
}
