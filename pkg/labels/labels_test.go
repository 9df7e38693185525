package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ferry/pkg/types"
)

func TestFields(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []string
		wantErr bool
	}{
		{
			name:  "empty value yields empty sequence",
			value: "",
			want:  nil,
		},
		{
			name:  "single field",
			value: "web-0",
			want:  []string{"web-0"},
		},
		{
			name:  "multiple fields in order",
			value: "web-0,web-1,db-0",
			want:  []string{"web-0", "web-1", "db-0"},
		},
		{
			name:  "quoted field with comma",
			value: `simple,"quoted,field"`,
			want:  []string{"simple", "quoted,field"},
		},
		{
			name:  "quoted field with escaped quote",
			value: `"say ""hi"""`,
			want:  []string{`say "hi"`},
		},
		{
			name:  "empty trailing field",
			value: "a,",
			want:  []string{"a", ""},
		},
		{
			name:    "second record rejected",
			value:   "a,b\nc,d",
			wantErr: true,
		},
		{
			name:    "malformed quoting rejected",
			value:   `"unterminated`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fields(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{
			name:   "empty",
			fields: nil,
		},
		{
			name:   "plain fields",
			fields: []string{"web-0", "web-1"},
		},
		{
			name:   "field with comma",
			fields: []string{"a,b", "c"},
		},
		{
			name:   "field with quotes",
			fields: []string{`say "hi"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Join(tt.fields)
			require.NoError(t, err)

			decoded, err := Fields(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.fields, decoded)
		})
	}
}

func TestParse(t *testing.T) {
	raw := RawImage{
		ID:         "f2a9c1d4e5b6",
		Digest:     "sha256:3b1a51a5b1bcbdfcf866ab05f4b04cbbf0f0a4e5660a3e6a6840d1bd14c0d56f",
		Containers: 2,
		Labels: map[string]string{
			KeyContainerNames:    "web-0,web-1",
			KeyNetworks:          "frontend",
			KeyPortMappings:      "8080:80,8443:443",
			KeyVolumeMounts:      "data:/var/lib/app",
			KeyHealthCheck:       "curl -fsS localhost/healthz",
			"org.opencontainers": "ignored",
		},
	}

	image, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, types.Image{
		ID:             "f2a9c1d4e5b6",
		Digest:         "sha256:3b1a51a5b1bcbdfcf866ab05f4b04cbbf0f0a4e5660a3e6a6840d1bd14c0d56f",
		ContainerCount: 2,
		Intent: types.Intent{
			ContainerNames: []string{"web-0", "web-1"},
			Networks:       []string{"frontend"},
			PortMappings:   []string{"8080:80", "8443:443"},
			VolumeMounts:   []string{"data:/var/lib/app"},
			HealthCheck:    "curl -fsS localhost/healthz",
		},
	}, image)
}

func TestParseWithoutLabels(t *testing.T) {
	image, err := Parse(RawImage{ID: "abc", Digest: "sha256:1234", Containers: 0})
	require.NoError(t, err)

	assert.Empty(t, image.Intent.ContainerNames)
	assert.Empty(t, image.Intent.Networks)
	assert.Empty(t, image.Intent.PortMappings)
	assert.Empty(t, image.Intent.VolumeMounts)
	assert.Empty(t, image.Intent.HealthCheck)
}

func TestParseRejectsMalformedLabel(t *testing.T) {
	_, err := Parse(RawImage{
		ID:     "abc",
		Labels: map[string]string{KeyContainerNames: `"unterminated`},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyContainerNames)
	assert.Contains(t, err.Error(), "abc")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		intent       types.Intent
		wantFindings int
	}{
		{
			name: "clean intent",
			intent: types.Intent{
				ContainerNames: []string{"web-0", "web-1"},
				PortMappings:   []string{"8080:80", "9090:90/udp"},
			},
			wantFindings: 0,
		},
		{
			name: "duplicate container name",
			intent: types.Intent{
				ContainerNames: []string{"web-0", "web-0"},
			},
			wantFindings: 1,
		},
		{
			name: "invalid port mapping",
			intent: types.Intent{
				PortMappings: []string{"not-a-port"},
			},
			wantFindings: 1,
		},
		{
			name: "multiple findings accumulate",
			intent: types.Intent{
				ContainerNames: []string{"a", "a"},
				PortMappings:   []string{"nope", "8080:80"},
			},
			wantFindings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Validate(tt.intent)
			assert.Len(t, findings, tt.wantFindings)
		})
	}
}
