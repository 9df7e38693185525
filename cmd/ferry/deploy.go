package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/journal"
	"github.com/cuemby/ferry/pkg/transport"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Mirror the workbench to a host and reconcile it",
	Long: `Mirror the local workbench to the configured host over rsync, then run
the reconciler there over ssh.

The remote side needs nothing but the ferry binary and the container
engine; the workbench path travels in the environment of the ssh session.

Examples:
  # Deploy to the host from ferry.yaml
  ferry deploy

  # Show the rsync and ssh command lines without running them
  ferry deploy --dry-run`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().Bool("dry-run", false, "Print the command lines without running them")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if err := cfg.ForDeploy(); err != nil {
		return err
	}

	d := transport.New(command.NewRunner(), transport.Config{
		SSHConfig:       cfg.SSHConfig,
		User:            cfg.DeployUser,
		Host:            cfg.SSHHost,
		LocalWorkbench:  cfg.LocalWorkbench,
		RemoteWorkbench: cfg.RemoteWorkbench,
		RemoteCommand:   cfg.RemoteCommand,
		DryRun:          dryRun,
	})

	if dryRun {
		return d.Run(cmd.Context())
	}

	record := beginRun(journal.KindDeploy)
	err := d.Run(cmd.Context())
	finishRun(record, err, func(r *journal.Record) {
		r.Host = cfg.SSHHost
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Deployed to %s\n", cfg.SSHHost)
	return nil
}
