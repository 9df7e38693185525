/*
Package transport moves built artifacts to a host and hands off to the
reconciler there.

The deploy phase is two commands over one ssh configuration:

 1. rsync --archive --delete mirrors the local workbench into the remote
    one. After the mirror, the remote filename set equals the local one,
    which is the precondition the reconciler's load step relies on.
 2. ssh runs the remote reconciler with FERRY_REMOTE_WORKBENCH pointing at
    the synced directory.

The remote command line is shell-quoted as a single argument and prefixed
with env(1), so workbench paths survive the remote shell unharmed.

Nothing here inspects artifact contents. The transport is a contract
between builder and reconciler, not a pipeline stage with logic of its
own.

# Usage

	d := transport.New(command.NewRunner(), transport.Config{
		SSHConfig:       "ssh/config",
		User:            "deploy",
		Host:            "node-1",
		LocalWorkbench:  ".ferry/workbench",
		RemoteWorkbench: "/var/lib/ferry/workbench",
	})
	err := d.Run(ctx)

# See Also

  - pkg/builder for what the workbench holds
  - pkg/reconciler for the remote half
*/
package transport
