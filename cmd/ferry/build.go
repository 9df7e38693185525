package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/builder"
	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/engine"
	"github.com/cuemby/ferry/pkg/journal"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build images into the local workbench",
	Long: `Build every configured context and settle the local workbench.

After a successful run the workbench holds exactly one <image-id>.tar
archive per configured context. Archives whose context disappeared are
deleted; archives whose image is unchanged are reused without rebuilding.

Examples:
  # Build the contexts from ferry.yaml
  ferry build

  # Override the context list and parallelize
  FERRY_BUILD_CONTEXTS=./web:./db ferry build --jobs 4`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Int("jobs", 0, "Parallel builds (0 = build_jobs setting)")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		cfg.BuildJobs = jobs
	}
	if err := cfg.ForBuild(); err != nil {
		return err
	}

	engineCLI, err := engine.New(command.NewRunner(), cfg.Engine)
	if err != nil {
		return err
	}

	b := builder.New(engineCLI, afero.NewOsFs(), builder.Config{
		Workbench: cfg.LocalWorkbench,
		Jobs:      cfg.BuildJobs,
	})

	record := beginRun(journal.KindBuild)
	result, err := b.Run(cmd.Context(), cfg.BuildContexts)
	finishRun(record, err, func(r *journal.Record) {
		r.Contexts = cfg.BuildContexts
		r.Artifacts = result.ImageIDs
		r.CacheHits = result.CacheHits
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ %d images in %s (%d reused, %d obsolete removed)\n",
		len(result.ImageIDs), cfg.LocalWorkbench, result.CacheHits, len(result.Removed))
	return nil
}
