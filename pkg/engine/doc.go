/*
Package engine drives the container engine Ferry orchestrates.

Ferry never links a container runtime. The engine is an external
podman-compatible CLI invoked as subprocesses, and this package is the one
place its command lines are spelled out. Everything above it (builder,
applier, reconciler) works in terms of typed operations.

# Command Contract

The engine must implement these operations with podman semantics:

	build --quiet -- <context>                   stdout = image ID
	save --format oci-archive --output <f> -- <id>
	load --input <f>
	images --format json                          Id, Digest, Containers, Labels
	create [--health-cmd ...] --name ... -- <id>
	rm -- <name>
	network exists -- <name>                      exit 1 = absent
	network create -- <name>
	healthcheck run <name>                        exit 0 = healthy
	generate systemd --files --name --restart-policy always -- <name>
	system prune --all --force [--volumes]

The engine command itself is configurable, so remote engine sockets
(`podman --remote`) and drop-in compatible CLIs work without code changes.

# Usage

	cli, err := engine.New(command.NewRunner(), []string{"podman"})

	id, err := cli.Build(ctx, "./services/web")
	err = cli.Save(ctx, id, "/workbench/"+id+".tar")

	images, err := cli.Images(ctx)

# Integration Points

  - pkg/builder: Build, Save
  - pkg/reconciler: Load, Images, Prune
  - pkg/applier: CreateContainer, RemoveContainer, NetworkExists,
    CreateNetwork, GenerateUnits, RunHealthcheck

# See Also

  - pkg/command for subprocess execution and error rendering
  - pkg/labels for how image records decode into intent
*/
package engine
