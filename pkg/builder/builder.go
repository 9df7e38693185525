package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cuemby/ferry/pkg/log"
	"github.com/cuemby/ferry/pkg/metrics"
)

// ArtifactSuffix is the filename suffix of workbench image archives.
const ArtifactSuffix = ".tar"

// Engine is the subset of container-engine operations the builder drives
type Engine interface {
	Build(ctx context.Context, buildContext string) (string, error)
	Save(ctx context.Context, imageID, path string) error
}

// Config configures a builder
type Config struct {
	// Workbench is the local artifact cache directory, created if absent.
	Workbench string

	// Jobs bounds how many contexts build concurrently. Zero and one both
	// mean sequential.
	Jobs int
}

// Result summarizes one builder run
type Result struct {
	// ImageIDs are the image IDs the contexts produced, deduplicated,
	// in context order.
	ImageIDs []string

	// CacheHits counts contexts whose artifact already existed.
	CacheHits int

	// Removed lists the workbench entries deleted by garbage collection,
	// in lexicographic order.
	Removed []string
}

// Builder materializes build contexts into a flat directory of
// <image-id>.tar archives and garbage-collects entries no longer produced.
type Builder struct {
	engine Engine
	fs     afero.Fs
	config Config
	logger zerolog.Logger
}

// New creates a builder
func New(engine Engine, fs afero.Fs, config Config) *Builder {
	if config.Jobs < 1 {
		config.Jobs = 1
	}
	return &Builder{
		engine: engine,
		fs:     fs,
		config: config,
		logger: log.WithComponent("builder"),
	}
}

// Run builds every context and settles the workbench: after it returns
// successfully, the workbench holds exactly the artifacts of the given
// contexts. Any engine failure is fatal and leaves garbage collection to
// the next run; artifacts already on disk stay valid.
func (b *Builder) Run(ctx context.Context, contexts []string) (Result, error) {
	if err := b.fs.MkdirAll(b.config.Workbench, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create workbench %q: %w", b.config.Workbench, err)
	}

	ids := make([]string, len(contexts))
	hits := make([]bool, len(contexts))

	// One context may duplicate another's image ID; only the first claim
	// saves the artifact.
	var mu sync.Mutex
	claimed := map[string]bool{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.config.Jobs)
	for i, buildContext := range contexts {
		i, buildContext := i, buildContext
		group.Go(func() error {
			id, err := b.buildContext(groupCtx, buildContext)
			if err != nil {
				return err
			}
			ids[i] = id

			filename := id + ArtifactSuffix
			mu.Lock()
			alreadyClaimed := claimed[filename]
			claimed[filename] = true
			mu.Unlock()

			if alreadyClaimed {
				hits[i] = true
				metrics.BuildCacheHits.Inc()
				return nil
			}

			hit, err := b.materialize(groupCtx, id, filename)
			if err != nil {
				return err
			}
			hits[i] = hit
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	removed, err := b.collectGarbage(lo.SliceToMap(ids, func(id string) (string, bool) {
		return id + ArtifactSuffix, true
	}))
	if err != nil {
		return Result{}, err
	}

	return Result{
		ImageIDs:  lo.Uniq(ids),
		CacheHits: lo.Count(hits, true),
		Removed:   removed,
	}, nil
}

func (b *Builder) buildContext(ctx context.Context, buildContext string) (string, error) {
	b.logger.Info().Str("context", buildContext).Msg("building image")

	start := time.Now()
	id, err := b.engine.Build(ctx, buildContext)
	if err != nil {
		return "", err
	}
	metrics.BuildDuration.Observe(time.Since(start).Seconds())

	b.logger.Debug().
		Str("context", buildContext).
		Str("image", id).
		Dur("elapsed", time.Since(start)).
		Msg("image built")
	return id, nil
}

// materialize ensures the artifact file for the image exists and reports
// whether it already did. Fresh artifacts are saved to a partial file and
// renamed, so entries present in the workbench are always complete.
func (b *Builder) materialize(ctx context.Context, id, filename string) (bool, error) {
	path := filepath.Join(b.config.Workbench, filename)

	exists, err := afero.Exists(b.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to probe artifact %q: %w", path, err)
	}
	if exists {
		b.logger.Info().Str("image", id).Str("artifact", path).Msg("artifact already cached")
		metrics.BuildCacheHits.Inc()
		return true, nil
	}

	partial := path + ".partial"
	if err := b.engine.Save(ctx, id, partial); err != nil {
		return false, fmt.Errorf("failed to save image %q: %w", id, err)
	}
	if err := b.fs.Rename(partial, path); err != nil {
		return false, fmt.Errorf("failed to finalize artifact %q: %w", path, err)
	}
	metrics.ImagesBuilt.Inc()

	logEvent := b.logger.Info().Str("image", id).Str("artifact", path)
	if info, err := b.fs.Stat(path); err == nil {
		logEvent = logEvent.Str("size", units.HumanSize(float64(info.Size())))
	}
	logEvent.Msg("image saved to workbench")
	return false, nil
}

// collectGarbage deletes every workbench entry not produced this run, in
// lexicographic order.
func (b *Builder) collectGarbage(produced map[string]bool) ([]string, error) {
	entries, err := afero.ReadDir(b.fs, b.config.Workbench)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate workbench %q: %w", b.config.Workbench, err)
	}

	var obsolete []string
	for _, entry := range entries {
		if !produced[entry.Name()] {
			obsolete = append(obsolete, entry.Name())
		}
	}
	sort.Strings(obsolete)

	for _, name := range obsolete {
		path := filepath.Join(b.config.Workbench, name)
		b.logger.Info().Str("artifact", path).Msg("removing obsolete artifact")
		if err := b.fs.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove obsolete artifact %q: %w", path, err)
		}
	}
	return obsolete, nil
}
