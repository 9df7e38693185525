package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/ferry/pkg/command"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Report collaborator tool versions as JSON",
	Long: `Probe every external tool ferry drives and print a JSON report of the
versions found. Useful when a deploy misbehaves and the first question
is what the host is actually running.

Examples:
  ferry diagnose
  ferry diagnose | jq .tools`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

type diagnosis struct {
	Ferry string            `json:"ferry"`
	Tools map[string]string `json:"tools"`
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	// Probe output is captured, not streamed; failures become report
	// entries instead of aborting the run.
	runner := command.NewRunnerWithIO(io.Discard, io.Discard)

	engineVersion := append(append([]string{}, cfg.Engine[1:]...), "--version")
	probes := []struct {
		name string
		cmd  command.Cmd
	}{
		{"engine", command.New(cfg.Engine[0], engineVersion...)},
		{"rsync", command.New("rsync", "--version")},
		{"ssh", command.New("ssh", "-V")},
		{"ansible-playbook", command.New("ansible-playbook", "--version")},
		{"systemctl", command.New("systemctl", "--version")},
	}

	report := diagnosis{Ferry: Version, Tools: map[string]string{}}
	for _, probe := range probes {
		out, err := runner.CombinedText(cmd.Context(), probe.cmd)
		if err != nil {
			report.Tools[probe.name] = fmt.Sprintf("unavailable: %v", err)
			continue
		}
		report.Tools[probe.name] = firstLine(out)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
