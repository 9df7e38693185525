/*
Package log provides structured logging for Ferry using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers and configurable log levels. All logs include
timestamps and support filtering by severity level. Logs go to stderr by
default so command output (plans, reports) stays clean on stdout.

# Architecture

Ferry's logging system provides structured logging with minimal overhead:

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stderr, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("builder")                 │          │
	│  │  - WithRunID("run-abc123")                  │          │
	│  └────────────────────────────────────────────┘          │
	└───────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all Ferry packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: subprocess command lines, cache hits, probe attempts
  - Info: build results, plan summaries, applied changes
  - Warn: suspicious label values, retried health probes
  - Error: failed engine calls, transfer failures
  - Fatal: unusable configuration (process exits)

Context Loggers:
  - WithComponent: add component name to all logs
  - WithRunID: correlate all logs of one deployment run

Components attach finer-grained fields (container, image, host) to their
own child loggers at the call site.

# Usage

Initializing the logger:

	import "github.com/cuemby/ferry/pkg/log"

	// Console output (interactive use)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
	})

	// JSON output (CI pipelines)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: true,
		Output:     os.Stderr,
	})

Component logging:

	logger := log.WithComponent("builder")
	logger.Info().
		Str("image", imageID).
		Str("size", units.HumanSize(float64(n))).
		Msg("image saved to workbench")

# Integration Points

This package is used by:
  - pkg/builder: build progress and cache decisions
  - pkg/reconciler: plan summaries and apply progress
  - pkg/applier: per-change lifecycle logging
  - pkg/command: subprocess command lines at debug level
  - cmd/ferry: initialization from --log-level and --log-json flags

# See Also

  - pkg/command for how subprocess invocations are logged
  - pkg/metrics for quantitative instrumentation
*/
package log
