/*
Package applier executes planned container changes against the host.

The applier is the only component that mutates runtime state. It receives
one change at a time from the reconciler and dispatches on the operator:

# ADD

 1. Ensure every declared network exists, creating missing ones (an engine
    probe answering "absent" is an expected signal, not an error).
 2. Create the container, without starting it, from the change's image with
    its health command, name, networks, publications, and volume mounts.
 3. Generate a user-scope unit (restart policy always) into the unit
    directory and enable it with immediate start.
 4. When the image declares a health check, hold the deployment at the
    health gate until the container reports healthy.

# KEEP

No runtime side effects. The container's digest already matches the target.

# REMOVE

 1. Disable the unit with immediate stop.
 2. Delete the unit file.
 3. Remove the stopped container.

There is no rollback: a failed change aborts the run, and convergence comes
from re-running against the host's new actual state.

# Usage

	a := applier.New(engineCLI, supervisor, health.NewGate(health.DefaultConfig()))
	for _, change := range changes {
		if err := a.Apply(ctx, change); err != nil {
			return err
		}
	}

# See Also

  - pkg/planner for how changes are ordered
  - pkg/health for gate timing
  - pkg/units for unit-manager details
*/
package applier
