/*
Package labels implements Ferry's image-metadata schema.

Deployment intent travels inside the images themselves, as OCI labels under
the reserved namespace `io.cuemby.ferry.`. Sequence-valued fields (container
names, networks, port mappings, volume mounts) are encoded as single CSV
records with standard quoting; the health check is a plain command string.
This package decodes raw engine image records into typed intent and offers
the inverse encoding for build pipelines.

# Label Schema

	io.cuemby.ferry.container-names   CSV list of containers to derive
	io.cuemby.ferry.networks          CSV list of networks to attach
	io.cuemby.ferry.port-mappings    CSV list of host:container[/proto]
	io.cuemby.ferry.volume-mounts    CSV list of engine mount specs
	io.cuemby.ferry.health-check     shell command; absent = no gating

All fields are optional. A missing or empty label decodes to the empty
sequence; a missing health check disables the post-start health gate. The
schema is stable across releases.

# Usage

Decoding an engine record:

	raw := labels.RawImage{
		ID:     "f2a9c1d4e5b6",
		Digest: "sha256:1111...",
		Labels: map[string]string{
			labels.KeyContainerNames: "web-0,web-1",
			labels.KeyPortMappings:   "8080:80",
		},
	}
	image, err := labels.Parse(raw)

Checking intent before applying:

	for _, finding := range labels.Validate(image.Intent) {
		logger.Warn().Str("finding", finding).Msg("suspicious deployment intent")
	}

# Integration Points

  - pkg/engine: parses `images --format json` records through Parse
  - pkg/reconciler: logs Validate findings before planning
  - build pipelines: Join encodes label values for Containerfiles

# See Also

  - pkg/types for the decoded Intent structure
*/
package labels
