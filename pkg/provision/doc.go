/*
Package provision prepares a host to receive deployments.

Provisioning is a single ansible-playbook run. The target host is passed
as an inline one-entry inventory (",host"), and the ssh configuration
used by deploys is forwarded through --ssh-common-args, so provisioning
and deploying authenticate the same way.

What the playbook does is up to the operator; a typical one installs the
container engine, enables user lingering, and creates the workbench
directory.

# Usage

	p := provision.New(command.NewRunner(), provision.Config{
		SSHConfig: "ssh/config",
		Host:      "node-1",
		Playbook:  "playbooks/base.yaml",
	})
	err := p.Run(ctx)

# See Also

  - pkg/transport for the deploy channel that follows provisioning
*/
package provision
