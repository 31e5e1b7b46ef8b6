package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingConfig indicates a required configuration input is absent. The
// run must abort before any network call is made.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all inputs for one reconcile run. Values come from the
// environment, optionally seeded from a .env file in the working directory.
type Config struct {
	// KibanaEndpoint is the base URL of the Kibana instance serving the
	// Fleet API, e.g. https://kibana.example.com:5601.
	KibanaEndpoint string

	// APIKey authenticates against the Fleet API.
	APIKey string

	// AgentTag selects the agents listening to GCP telemetry.
	AgentTag string

	// MasterPolicyName is the name of the agent policy holding the single
	// master integration policy used as the template.
	MasterPolicyName string

	// QuotaProject is the GCP project whose quota the Resource Manager
	// calls are billed against.
	QuotaProject string

	// IgnoreProjects lists project IDs excluded from reconciliation.
	IgnoreProjects []string

	LogLevel  string
	StatePath string
}

const envFile = ".env"

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present. Returns ErrMissingConfig naming
// every absent required input.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		KibanaEndpoint:   strings.TrimRight(v.GetString("KIBANA_ENDPOINT"), "/"),
		APIKey:           v.GetString("ELASTIC_API_KEY"),
		AgentTag:         v.GetString("GCP_AGENT_TAG"),
		MasterPolicyName: v.GetString("MASTER_AGENT_POLICY_NAME"),
		QuotaProject:     v.GetString("GCP_QUOTA_PROJECT"),
		IgnoreProjects:   splitList(v.GetString("IGNORE_PROJECTS")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		StatePath:        v.GetString("STATE_PATH"),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StatePath == "" {
		path, err := defaultStatePath()
		if err != nil {
			return nil, err
		}
		cfg.StatePath = path
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	required := []struct {
		key   string
		value string
	}{
		{"KIBANA_ENDPOINT", c.KibanaEndpoint},
		{"ELASTIC_API_KEY", c.APIKey},
		{"GCP_AGENT_TAG", c.AgentTag},
		{"MASTER_AGENT_POLICY_NAME", c.MasterPolicyName},
		{"GCP_QUOTA_PROJECT", c.QuotaProject},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".fleetsync", "state.db"), nil
}
