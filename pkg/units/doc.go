/*
Package units is the glue between Ferry and the user-scope service manager.

Containers added by Ferry are supervised by systemd user units generated
from the containers themselves (engine `generate systemd`). This package
resolves the user unit directory, makes sure it exists before units are
generated into it, enables and disables units with immediate effect, and
deletes unit files on container removal.

The supervisor never writes unit file content itself; generation is the
engine's job. Only units named `container-<name>.service` are ever touched.

# Usage

	dir, err := units.UserUnitDir()
	supervisor := units.NewSupervisor(runner, afero.NewOsFs(), dir)

	err = supervisor.EnsureDir()
	err = supervisor.EnableNow(ctx, "container-web-0.service")
	err = supervisor.DisableNow(ctx, "container-web-0.service")
	err = supervisor.RemoveUnit("container-web-0.service")

# See Also

  - pkg/applier for the add/remove sequences these calls belong to
*/
package units
