/*
Package builder materializes build contexts into the local workbench.

The workbench is a flat directory of `<image-id>.tar` OCI archives, one per
built image, and is the unit of transport: whatever the workbench holds
after a build run is exactly what rsync mirrors to the target host. Image
IDs are content-addressed, so the workbench doubles as a build cache: a
context whose image was already archived costs one quiet build and no save.

# Build Run

	for each context (up to Jobs in parallel):
	    id ← engine build --quiet
	    <workbench>/<id>.tar exists?  yes ⇒ cache hit
	                                  no  ⇒ engine save to .partial, rename
	after all contexts:
	    delete workbench entries not produced this run,
	    in lexicographic order

Garbage collection runs strictly after every build finished, so a file is
never deleted while another context could still claim it, and the deletion
order is deterministic. A failed build aborts the run before GC; artifacts
on disk remain valid, and the next run settles the directory.

Two contexts producing the same image share one artifact: the first claim
saves, later ones count as cache hits.

# Usage

	b := builder.New(engineCLI, afero.NewOsFs(), builder.Config{
		Workbench: cfg.LocalWorkbench,
		Jobs:      cfg.BuildJobs,
	})
	result, err := b.Run(ctx, cfg.BuildContexts)

# See Also

  - pkg/transport for how the workbench reaches the target host
  - pkg/reconciler for how artifacts are consumed there
*/
package builder
