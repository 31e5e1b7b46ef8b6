package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("KIBANA_ENDPOINT", "https://kibana.example.com:5601")
	t.Setenv("ELASTIC_API_KEY", "test-key")
	t.Setenv("GCP_AGENT_TAG", "gcp")
	t.Setenv("MASTER_AGENT_POLICY_NAME", "gcp-master")
	t.Setenv("GCP_QUOTA_PROJECT", "quota-project")
	t.Setenv("STATE_PATH", t.TempDir()+"/state.db")
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://kibana.example.com:5601", cfg.KibanaEndpoint)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "gcp", cfg.AgentTag)
	assert.Equal(t, "gcp-master", cfg.MasterPolicyName)
	assert.Equal(t, "quota-project", cfg.QuotaProject)
	assert.Empty(t, cfg.IgnoreProjects)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_TrimsEndpointSlash(t *testing.T) {
	setRequired(t)
	t.Setenv("KIBANA_ENDPOINT", "https://kibana.example.com:5601/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://kibana.example.com:5601", cfg.KibanaEndpoint)
}

func TestLoad_IgnoreList(t *testing.T) {
	setRequired(t)
	t.Setenv("IGNORE_PROJECTS", "P1, P2 ,,P3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2", "P3"}, cfg.IgnoreProjects)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("ELASTIC_API_KEY", "")
	t.Setenv("GCP_QUOTA_PROJECT", "")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "ELASTIC_API_KEY")
	assert.Contains(t, err.Error(), "GCP_QUOTA_PROJECT")
	assert.NotContains(t, err.Error(), "KIBANA_ENDPOINT")
}

func TestLoad_LogLevelOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
