package types

import (
	"github.com/opencontainers/go-digest"
)

// Image is one image record as reported by the container engine on a host,
// together with the deployment intent decoded from its labels.
type Image struct {
	// ID is the engine-assigned content-addressed identifier. Its stem form
	// (no algorithm prefix) names the artifact file in a workbench.
	ID string

	// Digest is the content digest of the image. Two images with the same
	// digest are interchangeable deployment targets.
	Digest digest.Digest

	// ContainerCount is the number of containers currently derived from
	// this image on the host. An image with at least one container is part
	// of the actual state.
	ContainerCount int

	// Intent is the deployment topology declared through image labels.
	Intent Intent
}

// Intent is the set of deployment directives an image carries as labels:
// which containers to derive from it and how to wire them.
type Intent struct {
	// ContainerNames lists the containers that must exist derived from
	// this image. Names are unique across a whole deployment.
	ContainerNames []string

	// Networks lists the networks each container joins.
	Networks []string

	// PortMappings lists publication specs (`host:container[/proto]`)
	// passed through to the engine.
	PortMappings []string

	// VolumeMounts lists mount specs as accepted by the engine.
	VolumeMounts []string

	// HealthCheck is a shell command probed after container creation.
	// Empty disables health gating.
	HealthCheck string
}

// Operator is the action a change performs on one container.
type Operator int

const (
	// OperatorAdd creates a container, generates its unit and gates on
	// health.
	OperatorAdd Operator = iota

	// OperatorKeep leaves an existing container untouched.
	OperatorKeep

	// OperatorRemove disables the unit and removes the container.
	OperatorRemove
)

// String returns the lowercase verb for the operator.
func (o Operator) String() string {
	switch o {
	case OperatorAdd:
		return "add"
	case OperatorKeep:
		return "keep"
	case OperatorRemove:
		return "remove"
	}
	return "unknown"
}

// Symbol returns the one-character plan notation for the operator.
func (o Operator) Symbol() string {
	switch o {
	case OperatorAdd:
		return "+"
	case OperatorKeep:
		return "="
	case OperatorRemove:
		return "-"
	}
	return "?"
}

// Change is one planned container lifecycle action. The planner emits
// changes sorted by container name; the applier executes them in order.
type Change struct {
	Operator      Operator
	ContainerName string
	ImageID       string
	ImageDigest   digest.Digest

	Networks     []string
	PortMappings []string
	VolumeMounts []string
	HealthCheck  string
}

// UnitPrefix and UnitSuffix frame the service unit name generated for a
// container. The engine's unit generator uses the same convention.
const (
	UnitPrefix = "container-"
	UnitSuffix = ".service"
)

// UnitName returns the user-scope service unit derived for the change's
// container.
func (c Change) UnitName() string {
	return UnitPrefix + c.ContainerName + UnitSuffix
}
