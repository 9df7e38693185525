package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/applier"
	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/engine"
	"github.com/cuemby/ferry/pkg/health"
	"github.com/cuemby/ferry/pkg/journal"
	"github.com/cuemby/ferry/pkg/planner"
	"github.com/cuemby/ferry/pkg/reconciler"
	"github.com/cuemby/ferry/pkg/units"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Converge this host's containers to the workbench",
	Long: `Load every image archive from the workbench, compare the engine's
containers against the images' deployment intent, and apply the
difference: obsolete containers are removed, missing ones are created
and enabled as systemd user units, unchanged ones are left alone.

Deploys run this on the target host; it works the same way locally.

Examples:
  # Converge to /var/lib/ferry/workbench
  FERRY_REMOTE_WORKBENCH=/var/lib/ferry/workbench ferry reconcile

  # Show the plan without touching anything
  ferry reconcile --dry-run`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().Bool("dry-run", false, "Print the plan without applying it")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if err := cfg.ForReconcile(); err != nil {
		return err
	}

	runner := command.NewRunner()
	engineCLI, err := engine.New(runner, cfg.Engine)
	if err != nil {
		return err
	}

	unitDir, err := units.UserUnitDir()
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	containerApplier := applier.New(
		engineCLI,
		units.NewSupervisor(runner, fs, unitDir),
		health.NewGate(health.Config{Cap: cfg.HealthGateCap}),
	)

	r := reconciler.New(engineCLI, containerApplier, fs, reconciler.Config{
		Workbench:    cfg.RemoteWorkbench,
		DryRun:       dryRun,
		PruneVolumes: cfg.PruneVolumes,
	})

	if dryRun {
		_, err := r.Run(cmd.Context())
		return err
	}

	record := beginRun(journal.KindReconcile)
	result, err := r.Run(cmd.Context())
	finishRun(record, err, func(rec *journal.Record) {
		adds, keeps, removes := planner.Counts(result.Changes)
		rec.Changes = &journal.ChangeSummary{Adds: adds, Keeps: keeps, Removes: removes}
	})
	if err != nil {
		return err
	}

	adds, keeps, removes := planner.Counts(result.Changes)
	fmt.Printf("✓ Reconciled: %d added, %d kept, %d removed\n", adds, keeps, removes)
	return nil
}
