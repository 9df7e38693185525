package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/journal"
	"github.com/cuemby/ferry/pkg/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Prepare a host with the configured playbook",
	Long: `Run the configured ansible playbook against the target host, using the
same ssh configuration as deploys.

Examples:
  # Provision the host from ferry.yaml
  ferry provision`,
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	if err := cfg.ForProvision(); err != nil {
		return err
	}

	p := provision.New(command.NewRunner(), provision.Config{
		SSHConfig: cfg.SSHConfig,
		Host:      cfg.SSHHost,
		Playbook:  cfg.Playbook,
	})

	record := beginRun(journal.KindProvision)
	err := p.Run(cmd.Context())
	finishRun(record, err, func(r *journal.Record) {
		r.Host = cfg.SSHHost
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Provisioned %s\n", cfg.SSHHost)
	return nil
}
