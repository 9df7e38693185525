package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/config"
	"github.com/cuemby/ferry/pkg/journal"
	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool

	cfg   config.Config
	runID string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ferry",
	Short: "Ferry - Declarative container deployment over SSH",
	Long: `Ferry builds container images into a local workbench of OCI archives,
mirrors that workbench to a host over rsync, and reconciles the host's
containers to match it, supervised by systemd user units.

There is no daemon and no agent: the container engine, rsync, and ssh
are the only runtime collaborators.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Init(log.Config{
			Level:      log.Level(flagLogLevel),
			JSONOutput: flagLogJSON,
		})

		// One id correlates the logs and the journal record of this run.
		runID = uuid.New().String()
		log.Logger = log.WithRunID(runID)

		loaded, err := config.Load(afero.NewOsFs(), flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Ferry version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Manifest path (default: ferry.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false,
		"Emit JSON logs instead of console output")
}

// beginRun opens a journal record carrying this invocation's run id.
func beginRun(kind journal.Kind) journal.Record {
	record := journal.Begin(kind)
	record.ID = runID
	return record
}

// finishRun completes the record, persists it, and pushes metrics when a
// gateway is configured. Bookkeeping problems are logged, never fatal.
func finishRun(record journal.Record, runErr error, enrich func(*journal.Record)) {
	record = record.Finish(runErr)
	if enrich != nil {
		enrich(&record)
	}
	metrics.RunsTotal.WithLabelValues(string(record.Kind), string(record.Outcome)).Inc()

	j, err := journal.Open(cfg.DataDir)
	if err != nil {
		log.Logger.Warn().Err(err).Msg("failed to open journal")
	} else {
		if err := j.Append(record); err != nil {
			log.Logger.Warn().Err(err).Msg("failed to record run")
		}
		j.Close()
	}

	if cfg.MetricsGateway == "" {
		return
	}
	if err := metrics.Push(cfg.MetricsGateway, string(record.Kind)); err != nil {
		log.Logger.Warn().Err(err).Msg("failed to push metrics")
	}
}
