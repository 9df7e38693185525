/*
Package types defines the core data structures used throughout Ferry.

This package contains the value records the deployment pipeline passes
between stages: image records with their decoded deployment intent, and the
container changes the planner derives from them. All other packages depend
on these types; this package depends on nothing but the digest type.

# Architecture

The types package is the foundation of Ferry's data model. It defines:

  - Image: one engine image record (id, digest, container count, intent)
  - Intent: deployment directives decoded from image labels
  - Change: one planned container lifecycle action
  - Operator: the ADD / KEEP / REMOVE action variants

All types are designed to be:
  - Plain value aggregates with structural equality over identity-bearing
    fields (digest, container name)
  - Serializable (JSON) for journaling and test fixtures
  - Free of behavior beyond derivation helpers (unit naming, operator
    rendering)

# Core Types

Image and Intent:
  - Image.Digest is the equivalence key for reconciliation: images with
    equal digests are interchangeable deployment targets
  - Image.ContainerCount > 0 marks an image as part of the actual state
  - Intent holds ordered label-decoded sequences: container names,
    networks, port mappings, volume mounts, plus an optional health check

Change and Operator:
  - Operator is a tagged variant (iota), not a string: plan logic switches
    on it exhaustively
  - Change carries everything the applier needs to act without re-reading
    the image record
  - Change.UnitName derives the user-scope service unit
    (`container-<name>.service`) for the container

# Usage

Deriving a unit name from a planned change:

	change := types.Change{
		Operator:      types.OperatorAdd,
		ContainerName: "web-0",
		ImageID:       "f2a9c1",
		ImageDigest:   "sha256:8c1f...",
	}
	unit := change.UnitName() // "container-web-0.service"

Rendering a plan line:

	fmt.Printf("%s %s container %q using image %q\n",
		change.Operator.Symbol(), change.Operator,
		change.ContainerName, change.ImageDigest)

# Integration Points

This package is used by:

  - pkg/labels: decodes engine label maps into Intent
  - pkg/planner: expands images into changes and folds churn
  - pkg/applier: dispatches on Change.Operator
  - pkg/reconciler: partitions images into actual and target sets
  - pkg/journal: persists change summaries per run

# See Also

  - pkg/labels for the label schema that produces Intent
  - pkg/planner for how changes are ordered and cancelled
*/
package types
