package reconciler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/cuemby/ferry/pkg/builder"
	"github.com/cuemby/ferry/pkg/labels"
	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/metrics"
	"github.com/cuemby/ferry/pkg/planner"
	"github.com/cuemby/ferry/pkg/types"
)

// Engine is the subset of container-engine operations the reconciler drives.
type Engine interface {
	Load(ctx context.Context, path string) error
	Images(ctx context.Context) ([]types.Image, error)
	Prune(ctx context.Context, volumes bool) error
}

// Applier executes a single planned change against the host.
type Applier interface {
	Apply(ctx context.Context, change types.Change) error
}

// Config configures a reconciler run
type Config struct {
	// Workbench is the directory holding the synced image archives.
	Workbench string

	// DryRun stops after printing the plan; nothing is applied or pruned.
	DryRun bool

	// PruneVolumes extends the final prune to anonymous volumes.
	PruneVolumes bool
}

// Result summarizes one reconciliation
type Result struct {
	// Loaded counts the archives loaded into the engine.
	Loaded int

	// Changes is the plan, in application order.
	Changes []types.Change

	// Applied reports whether the plan was executed (false for dry runs).
	Applied bool
}

// Reconciler converges the containers on this host to the images present
// in the workbench.
type Reconciler struct {
	engine  Engine
	applier Applier
	fs      afero.Fs
	out     io.Writer
	config  Config
	logger  zerolog.Logger
}

// New creates a reconciler that prints its plan to stdout
func New(engine Engine, applier Applier, fs afero.Fs, config Config) *Reconciler {
	return &Reconciler{
		engine:  engine,
		applier: applier,
		fs:      fs,
		out:     os.Stdout,
		config:  config,
		logger:  log.WithComponent("reconciler"),
	}
}

// SetOutput redirects the plan summary
func (r *Reconciler) SetOutput(out io.Writer) {
	r.out = out
}

// Run performs one reconciliation cycle: load every archive from the
// workbench, snapshot the engine's images, plan the changes, apply them in
// order, and prune unreferenced engine state. With DryRun set it stops
// after printing the plan.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	targetIDs, err := r.load(ctx)
	if err != nil {
		return Result{}, err
	}

	images, err := r.engine.Images(ctx)
	if err != nil {
		return Result{}, err
	}

	actual, target := partition(images, targetIDs)
	r.warnFindings(target)

	changes := planner.Plan(actual, target)
	for _, change := range changes {
		metrics.ChangesPlanned.WithLabelValues(change.Operator.String()).Inc()
	}
	r.logger.Info().
		Int("actual_images", len(actual)).
		Int("target_images", len(target)).
		Int("changes", len(changes)).
		Msg("plan computed")

	r.render(changes)

	result := Result{Loaded: len(targetIDs), Changes: changes}
	if r.config.DryRun {
		return result, nil
	}

	for _, change := range changes {
		if err := r.applier.Apply(ctx, change); err != nil {
			return Result{}, err
		}
		metrics.ChangesApplied.WithLabelValues(change.Operator.String()).Inc()
	}

	if err := r.engine.Prune(ctx, r.config.PruneVolumes); err != nil {
		return Result{}, err
	}

	result.Applied = true
	return result, nil
}

// load feeds every workbench archive to the engine, in lexicographic
// order, and returns the image IDs named by the file stems.
func (r *Reconciler) load(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, r.config.Workbench)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate workbench %q: %w", r.config.Workbench, err)
	}

	var names []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), builder.ArtifactSuffix) {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)

	ids := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(r.config.Workbench, name)
		r.logger.Info().Str("archive", path).Msg("loading image archive")
		if err := r.engine.Load(ctx, path); err != nil {
			return nil, err
		}
		ids = append(ids, strings.TrimSuffix(name, builder.ArtifactSuffix))
	}
	return ids, nil
}

// partition splits the engine's image list into the images that currently
// run containers and the images the workbench designates. An image with
// running containers that is also designated appears in both.
func partition(images []types.Image, targetIDs []string) (actual, target []types.Image) {
	designated := lo.SliceToMap(targetIDs, func(id string) (string, bool) {
		return id, true
	})
	actual = lo.Filter(images, func(image types.Image, _ int) bool {
		return image.ContainerCount > 0
	})
	target = lo.Filter(images, func(image types.Image, _ int) bool {
		return designated[image.ID]
	})
	return actual, target
}

// warnFindings surfaces intent problems without stopping the run. The
// engine remains the final authority on whether a change is executable.
func (r *Reconciler) warnFindings(target []types.Image) {
	for _, image := range target {
		for _, finding := range labels.Validate(image.Intent) {
			r.logger.Warn().
				Str("image", image.ID).
				Str("finding", finding).
				Msg("image intent validation")
		}
	}
}

var operatorPaint = map[types.Operator]color.Attribute{
	types.OperatorAdd:    color.FgGreen,
	types.OperatorKeep:   color.FgCyan,
	types.OperatorRemove: color.FgRed,
}

// render prints the plan, one line per change
func (r *Reconciler) render(changes []types.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(r.out, "nothing to change")
		return
	}

	adds, keeps, removes := planner.Counts(changes)
	fmt.Fprintf(r.out, "plan: %d to add, %d to keep, %d to remove\n", adds, keeps, removes)
	for _, change := range changes {
		line := fmt.Sprintf("%s %s (image %s)", change.Operator.Symbol(), change.ContainerName, change.ImageID)
		fmt.Fprintln(r.out, color.New(operatorPaint[change.Operator]).Sprint(line))
	}
}
