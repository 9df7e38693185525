package labels

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/opencontainers/go-digest"

	"github.com/cuemby/ferry/pkg/types"
)

// Namespace is the reserved label prefix carrying deployment intent.
const Namespace = "io.cuemby.ferry."

// Label keys under the reserved namespace. The schema is stable: images
// built against one Ferry release stay deployable by later releases.
const (
	KeyContainerNames = Namespace + "container-names"
	KeyNetworks       = Namespace + "networks"
	KeyPortMappings   = Namespace + "port-mappings"
	KeyVolumeMounts   = Namespace + "volume-mounts"
	KeyHealthCheck    = Namespace + "health-check"
)

// RawImage mirrors one record of the engine's `images --format json` output
type RawImage struct {
	ID         string            `json:"Id"`
	Digest     digest.Digest     `json:"Digest"`
	Containers int               `json:"Containers"`
	Labels     map[string]string `json:"Labels"`
}

// Parse decodes a raw engine record into an image with its deployment
// intent. Labels outside the reserved namespace are ignored; missing labels
// yield empty sequences.
func Parse(raw RawImage) (types.Image, error) {
	intent := types.Intent{
		HealthCheck: raw.Labels[KeyHealthCheck],
	}

	for _, field := range []struct {
		key  string
		into *[]string
	}{
		{KeyContainerNames, &intent.ContainerNames},
		{KeyNetworks, &intent.Networks},
		{KeyPortMappings, &intent.PortMappings},
		{KeyVolumeMounts, &intent.VolumeMounts},
	} {
		fields, err := Fields(raw.Labels[field.key])
		if err != nil {
			return types.Image{}, fmt.Errorf("failed to decode label %q of image %q: %w",
				field.key, raw.ID, err)
		}
		*field.into = fields
	}

	return types.Image{
		ID:             raw.ID,
		Digest:         raw.Digest,
		ContainerCount: raw.Containers,
		Intent:         intent,
	}, nil
}

// Fields decodes one CSV-encoded label value into its fields. The value is
// a single CSV record with standard quoting; an empty value is the empty
// sequence.
func Fields(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(value))
	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV record: %w", err)
	}
	if _, err := reader.Read(); err != io.EOF {
		return nil, fmt.Errorf("label value holds more than one CSV record")
	}
	return record, nil
}

// Join encodes fields as a single CSV record, the inverse of Fields. Useful
// for generating label values in build pipelines and fixtures.
func Join(fields []string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}

	var out strings.Builder
	writer := csv.NewWriter(&out)
	if err := writer.Write(fields); err != nil {
		return "", fmt.Errorf("failed to encode CSV record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to encode CSV record: %w", err)
	}
	return strings.TrimSuffix(out.String(), "\n"), nil
}

// Validate reports suspicious intent values as human-readable findings.
// Findings are advisory: the engine remains the final authority on what it
// accepts, so callers log them and proceed.
func Validate(intent types.Intent) []string {
	var findings []string

	seen := map[string]bool{}
	for _, name := range intent.ContainerNames {
		if seen[name] {
			findings = append(findings, fmt.Sprintf("container name %q appears more than once", name))
		}
		seen[name] = true
	}

	for _, mapping := range intent.PortMappings {
		if _, err := nat.ParsePortSpec(mapping); err != nil {
			findings = append(findings, fmt.Sprintf("port mapping %q is not a valid publication spec: %v", mapping, err))
		}
	}

	return findings
}
