/*
Package reconciler converges a host's containers to a workbench of images.

The reconciler is the remote half of a deployment. It assumes the image
archives have already been synced into the workbench directory and runs one
cycle end to end:

# Pipeline

	workbench/*.tar ──load──▶ engine
	                           │ images --format json
	                           ▼
	                actual ◀─partition─▶ target
	                           │
	                           ▼
	                     planner.Plan
	                           │ add / keep / remove
	                           ▼
	                     applier.Apply (in order)
	                           │
	                           ▼
	                     engine prune

Actual images are those with at least one container; target images are
those whose ID matches the stem of a workbench archive. An image running
containers it should keep running is in both sets, which is what lets the
planner cancel its removal against its re-addition.

Archives load in lexicographic filename order, and changes apply in the
planner's order, so repeated runs over the same workbench are
deterministic. A run that fails halfway leaves the host in a state the
next run converges from.

# Dry runs

With Config.DryRun the cycle stops after printing the plan summary. The
summary is colorized per operator when stdout is a terminal.

# Usage

	r := reconciler.New(engineCLI, containerApplier, afero.NewOsFs(), reconciler.Config{
		Workbench:    "/var/lib/ferry/workbench",
		PruneVolumes: true,
	})
	result, err := r.Run(ctx)

# See Also

  - pkg/planner for the cancellation fold
  - pkg/applier for per-change execution
  - pkg/builder for how the workbench is produced
*/
package reconciler
