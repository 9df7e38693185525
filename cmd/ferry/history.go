package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Long: `List recent ferry runs from the local journal, newest first.

Examples:
  ferry history
  ferry history --limit 50`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Runs to show (0 = all)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := journal.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.Recent(limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-10s %-10s %s\n", "STARTED", "KIND", "OUTCOME", "DURATION", "DETAIL")
	for _, record := range records {
		fmt.Printf("%-20s %-10s %-10s %-10s %s\n",
			record.StartedAt.Local().Format("2006-01-02 15:04:05"),
			record.Kind,
			record.Outcome,
			record.Duration.Round(time.Millisecond),
			recordDetail(record),
		)
	}
	return nil
}

func recordDetail(record journal.Record) string {
	switch {
	case record.Error != "":
		return record.Error
	case record.Changes != nil:
		return fmt.Sprintf("%d added, %d kept, %d removed",
			record.Changes.Adds, record.Changes.Keeps, record.Changes.Removes)
	case record.Kind == journal.KindBuild:
		return fmt.Sprintf("%d artifacts, %d reused", len(record.Artifacts), record.CacheHits)
	case record.Host != "":
		return record.Host
	default:
		return ""
	}
}
