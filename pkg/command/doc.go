/*
Package command provides the narrow subprocess layer every Ferry component
runs external tools through.

Ferry drives its collaborators (the container engine, systemctl, rsync, ssh,
ansible-playbook) as child processes. This package gives those call sites a
small, uniform surface: run and demand success, run and read a yes/no exit
code, run under a timeout, or run and capture stdout (raw, text, or JSON).
Every failure is wrapped with the shell-quoted command line so errors name
the exact invocation that failed.

# Architecture

	┌────────────── SUBPROCESS LAYER ────────────────┐
	│                                                 │
	│  Cmd{Program, Args, Dir}                        │
	│     │   value describing one invocation         │
	│     ▼                                           │
	│  Runner                                         │
	│   ├─ StatusOK          exit 0 or error          │
	│   ├─ StatusBool        exit 0 ⇒ yes, 1 ⇒ no     │
	│   ├─ StatusWithinTime  success/failure/timeout  │
	│   ├─ Output            captured stdout bytes    │
	│   ├─ OutputText        captured stdout string   │
	│   └─ OutputJSON        captured stdout decoded  │
	│                                                 │
	│  Context cancellation kills the child process.  │
	└─────────────────────────────────────────────────┘

Status methods stream the child's stdout and stderr to the runner's writers
so interactive tools (engine builds, rsync progress) stay visible. Capturing
methods capture stdout only and keep streaming stderr.

# Usage

	runner := command.NewRunner()

	// Demand success.
	err := runner.StatusOK(ctx, command.New("rsync", "--archive", src, dst))

	// Ask a yes/no question.
	exists, err := runner.StatusBool(ctx,
		command.New("podman", "network", "exists", "--", "frontend"))

	// Bound a probe.
	status, err := runner.StatusWithinTime(ctx,
		command.New("podman", "healthcheck", "run", "web-0"), 5*time.Second)

	// Capture structured output.
	var images []labels.RawImage
	err = runner.OutputJSON(ctx,
		command.New("podman", "images", "--format", "json"), &images)

# Integration Points

  - pkg/engine: all container-engine invocations
  - pkg/units: systemctl enable/disable
  - pkg/transport: rsync and ssh
  - pkg/provision: ansible-playbook
  - cmd/ferry diagnose: collaborator version probes

# See Also

  - pkg/engine for the container-engine command contract
*/
package command
