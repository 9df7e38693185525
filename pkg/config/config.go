package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultManifest is the manifest filename looked up in the working
// directory when no --config flag is given.
const DefaultManifest = "ferry.yaml"

// Environment keys. Each overrides the matching manifest field.
const (
	EnvBuildContexts   = "FERRY_BUILD_CONTEXTS"
	EnvLocalWorkbench  = "FERRY_LOCAL_WORKBENCH"
	EnvRemoteWorkbench = "FERRY_REMOTE_WORKBENCH"
	EnvSSHHost         = "FERRY_SSH_HOST"
	EnvSSHConfig       = "FERRY_SSH_CONFIGURATION"
	EnvDeployUser      = "FERRY_DEPLOY_USER"
	EnvPlaybook        = "FERRY_PLAYBOOK"
	EnvEngine          = "FERRY_ENGINE"
	EnvRemoteCommand   = "FERRY_REMOTE_COMMAND"
	EnvBuildJobs       = "FERRY_BUILD_JOBS"
	EnvHealthGateCap   = "FERRY_HEALTH_GATE_CAP"
	EnvPruneVolumes    = "FERRY_PRUNE_VOLUMES"
	EnvDataDir         = "FERRY_DATA_DIR"
	EnvMetricsGateway  = "FERRY_METRICS_GATEWAY"
)

// Config is the fully resolved configuration of one invocation.
// Resolution order: flags (applied by the command layer) > environment >
// manifest > defaults.
type Config struct {
	BuildContexts   []string
	LocalWorkbench  string
	RemoteWorkbench string
	SSHHost         string
	SSHConfig       string
	DeployUser      string
	Playbook        string
	Engine          []string
	RemoteCommand   []string
	BuildJobs       int
	HealthGateCap   time.Duration
	PruneVolumes    bool
	DataDir         string
	MetricsGateway  string
}

// manifest mirrors ferry.yaml. Command words are strings there and are
// shell-split during resolution; optional scalars are pointers so absent
// keys keep their defaults.
type manifest struct {
	BuildContexts   []string `yaml:"build_contexts"`
	LocalWorkbench  string   `yaml:"local_workbench"`
	RemoteWorkbench string   `yaml:"remote_workbench"`
	SSHHost         string   `yaml:"ssh_host"`
	SSHConfig       string   `yaml:"ssh_configuration"`
	DeployUser      string   `yaml:"deploy_user"`
	Playbook        string   `yaml:"playbook"`
	Engine          string   `yaml:"engine"`
	RemoteCommand   string   `yaml:"remote_command"`
	BuildJobs       *int     `yaml:"build_jobs"`
	HealthGateCap   string   `yaml:"health_gate_cap"`
	PruneVolumes    *bool    `yaml:"prune_volumes"`
	DataDir         string   `yaml:"data_dir"`
	MetricsGateway  string   `yaml:"metrics_gateway"`
}

// Load resolves configuration from the manifest at path and the process
// environment. An empty path means "use ferry.yaml if present"; a given
// path must exist.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := defaults()

	required := path != ""
	if path == "" {
		path = DefaultManifest
	}
	if err := applyManifest(fs, path, required, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Engine:        []string{"podman"},
		RemoteCommand: []string{"ferry"},
		BuildJobs:     1,
		PruneVolumes:  true,
		DataDir:       defaultDataDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ferry"
	}
	return filepath.Join(home, ".ferry")
}

func applyManifest(fs afero.Fs, path string, required bool, cfg *Config) error {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}

	if len(m.BuildContexts) > 0 {
		cfg.BuildContexts = m.BuildContexts
	}
	setString(&cfg.LocalWorkbench, m.LocalWorkbench)
	setString(&cfg.RemoteWorkbench, m.RemoteWorkbench)
	setString(&cfg.SSHHost, m.SSHHost)
	setString(&cfg.SSHConfig, m.SSHConfig)
	setString(&cfg.DeployUser, m.DeployUser)
	setString(&cfg.Playbook, m.Playbook)
	setString(&cfg.DataDir, m.DataDir)
	setString(&cfg.MetricsGateway, m.MetricsGateway)

	if m.Engine != "" {
		words, err := splitCommand(m.Engine)
		if err != nil {
			return fmt.Errorf("failed to parse manifest key engine: %w", err)
		}
		cfg.Engine = words
	}
	if m.RemoteCommand != "" {
		words, err := splitCommand(m.RemoteCommand)
		if err != nil {
			return fmt.Errorf("failed to parse manifest key remote_command: %w", err)
		}
		cfg.RemoteCommand = words
	}
	if m.BuildJobs != nil {
		cfg.BuildJobs = *m.BuildJobs
	}
	if m.HealthGateCap != "" {
		gateCap, err := time.ParseDuration(m.HealthGateCap)
		if err != nil {
			return fmt.Errorf("failed to parse manifest key health_gate_cap: %w", err)
		}
		cfg.HealthGateCap = gateCap
	}
	if m.PruneVolumes != nil {
		cfg.PruneVolumes = *m.PruneVolumes
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	if v, ok := lookup(EnvBuildContexts); ok {
		contexts := filepath.SplitList(v)
		for _, context := range contexts {
			if context == "" {
				return fmt.Errorf("%s contains an empty path", EnvBuildContexts)
			}
		}
		cfg.BuildContexts = contexts
	}
	if v, ok := lookup(EnvLocalWorkbench); ok {
		cfg.LocalWorkbench = v
	}
	if v, ok := lookup(EnvRemoteWorkbench); ok {
		cfg.RemoteWorkbench = v
	}
	if v, ok := lookup(EnvSSHHost); ok {
		cfg.SSHHost = v
	}
	if v, ok := lookup(EnvSSHConfig); ok {
		cfg.SSHConfig = v
	}
	if v, ok := lookup(EnvDeployUser); ok {
		cfg.DeployUser = v
	}
	if v, ok := lookup(EnvPlaybook); ok {
		cfg.Playbook = v
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvMetricsGateway); ok {
		cfg.MetricsGateway = v
	}

	if v, ok := lookup(EnvEngine); ok {
		words, err := splitCommand(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvEngine, err)
		}
		cfg.Engine = words
	}
	if v, ok := lookup(EnvRemoteCommand); ok {
		words, err := splitCommand(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvRemoteCommand, err)
		}
		cfg.RemoteCommand = words
	}
	if v, ok := lookup(EnvBuildJobs); ok {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvBuildJobs, err)
		}
		cfg.BuildJobs = jobs
	}
	if v, ok := lookup(EnvHealthGateCap); ok {
		gateCap, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvHealthGateCap, err)
		}
		cfg.HealthGateCap = gateCap
	}
	if v, ok := lookup(EnvPruneVolumes); ok {
		prune, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvPruneVolumes, err)
		}
		cfg.PruneVolumes = prune
	}
	return nil
}

// splitCommand shell-splits a command string and rejects blank results.
func splitCommand(v string) ([]string, error) {
	words, err := shellquote.Split(v)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("empty command")
	}
	return words, nil
}

// lookup reads an environment key, treating empty values as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ForBuild reports the first missing key the build phase needs.
func (c Config) ForBuild() error {
	if len(c.BuildContexts) == 0 {
		return missing("build_contexts", EnvBuildContexts)
	}
	if c.LocalWorkbench == "" {
		return missing("local_workbench", EnvLocalWorkbench)
	}
	return nil
}

// ForDeploy reports the first missing key the deploy phase needs.
func (c Config) ForDeploy() error {
	if c.LocalWorkbench == "" {
		return missing("local_workbench", EnvLocalWorkbench)
	}
	if c.RemoteWorkbench == "" {
		return missing("remote_workbench", EnvRemoteWorkbench)
	}
	if c.SSHHost == "" {
		return missing("ssh_host", EnvSSHHost)
	}
	if c.SSHConfig == "" {
		return missing("ssh_configuration", EnvSSHConfig)
	}
	if c.DeployUser == "" {
		return missing("deploy_user", EnvDeployUser)
	}
	return nil
}

// ForReconcile reports the first missing key the reconcile phase needs.
func (c Config) ForReconcile() error {
	if c.RemoteWorkbench == "" {
		return missing("remote_workbench", EnvRemoteWorkbench)
	}
	return nil
}

// ForProvision reports the first missing key the provision phase needs.
func (c Config) ForProvision() error {
	if c.SSHHost == "" {
		return missing("ssh_host", EnvSSHHost)
	}
	if c.SSHConfig == "" {
		return missing("ssh_configuration", EnvSSHConfig)
	}
	if c.Playbook == "" {
		return missing("playbook", EnvPlaybook)
	}
	return nil
}

func missing(field, env string) error {
	return fmt.Errorf("missing configuration key %q (set %s or %s in %s)", field, env, field, DefaultManifest)
}
