// Package framework holds shared helpers for integration tests that drive
// a real container engine. Tests using it are skipped on machines without
// one.
package framework

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cuemby/ferry/pkg/command"
	"github.com/cuemby/ferry/pkg/engine"
)

// EngineBinary is the engine integration tests run against.
const EngineBinary = "podman"

// RequireEngine returns an engine client backed by a real podman, or skips
// the test when none is usable. Child output is discarded to keep test
// logs readable.
func RequireEngine(t *testing.T) (*engine.CLI, *command.Runner) {
	t.Helper()

	if _, err := exec.LookPath(EngineBinary); err != nil {
		t.Skipf("%s not available: %v", EngineBinary, err)
	}

	runner := command.NewRunnerWithIO(io.Discard, io.Discard)
	if _, err := runner.OutputText(context.Background(), command.New(EngineBinary, "--version")); err != nil {
		t.Skipf("%s not functional: %v", EngineBinary, err)
	}

	cli, err := engine.New(runner, []string{EngineBinary})
	if err != nil {
		t.Fatalf("Failed to create engine client: %v", err)
	}
	return cli, runner
}

// ScratchContext writes a minimal FROM scratch build context carrying the
// given labels and returns its directory. Scratch images build without
// network access.
func ScratchContext(t *testing.T, labels map[string]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("FROM scratch\n")
	for key, value := range labels {
		fmt.Fprintf(&b, "LABEL %q=%q\n", key, value)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Containerfile"), []byte(b.String()), 0o644); err != nil {
		t.Fatalf("Failed to write Containerfile: %v", err)
	}
	return dir
}

// RemoveImage deletes an image built by a test, logging instead of failing
// when the engine refuses.
func RemoveImage(t *testing.T, runner *command.Runner, imageID string) {
	t.Helper()

	if err := runner.StatusOK(context.Background(), command.New(EngineBinary, "rmi", "--force", "--", imageID)); err != nil {
		t.Logf("Warning: failed to remove image %s: %v", imageID, err)
	}
}

// UniqueName builds a collision-free resource name with the given prefix.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}
