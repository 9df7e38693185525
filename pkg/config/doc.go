/*
Package config resolves the invocation configuration.

Values come from four layers, strongest first:

 1. Command-line flags, applied by the command layer after Load.
 2. FERRY_* environment variables.
 3. The ferry.yaml manifest (optional; --config selects another path).
 4. Built-in defaults (podman engine, sequential builds, prune volumes).

Command words such as engine and remote_command are single strings in the
manifest and the environment, split with shell quoting rules, so
"podman --remote" works without a list syntax.

Each phase validates only the fields it needs (ForBuild, ForDeploy,
ForReconcile, ForProvision) and reports the first missing key together
with the environment variable that would set it. The reconcile phase on a
target host typically runs with nothing but FERRY_REMOTE_WORKBENCH set.

# Usage

	cfg, err := config.Load(afero.NewOsFs(), flagConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.ForDeploy(); err != nil {
		return err
	}

# See Also

  - cmd/ferry for flag wiring
*/
package config
