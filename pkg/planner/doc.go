/*
Package planner turns the actual and target image sets into an ordered list
of container changes.

The planner is a pure function over value records: no engine calls, no
clock, no side effects. Given the images currently backing containers
(actual) and the images freshly loaded from the workbench (target), it
decides per container name whether to add, keep, or remove.

# Architecture

	actual images ──┐
	                ├─► expand ─► stable sort ─► fold ─► []Change
	target images ──┘

	expand   one REMOVE per actual container name,
	         then one ADD per target container name
	sort     stable, ascending by container name
	fold     adjacent (REMOVE, ADD) with equal name and digest ⇒ KEEP

# Properties

The planner guarantees, for any inputs:

  - Output is sorted by container name and deterministic across runs.
  - Each container name appears at most twice, and only as (REMOVE, ADD)
    with differing digests (an in-place image replacement).
  - A name whose actual and target digests match yields exactly one KEEP,
    which the applier treats as a no-op, making re-runs mutation-free.
  - Replica suffixes (x-0, x-1) interleave alphabetically, so replacing one
    replica never touches its siblings in the same step.

# Usage

	changes := planner.Plan(actual, target)
	adds, keeps, removes := planner.Counts(changes)

# See Also

  - pkg/applier for how each change executes
  - pkg/reconciler for where actual and target come from
*/
package planner
