package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ismigrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.TagMode)
	assert.Equal(t, TransferModeRegistry, cfg.TransferMode)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.False(t, cfg.EstimateSizes)
	assert.Empty(t, cfg.Namespaces)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
cluster:
  api: https://api.src.example.com:6443
  username: admin
  insecure: true
source:
  host: registry.src.example.com
destination:
  host: registry.dst.example.com
  group: migrated
  username: pusher
repo_api:
  url: https://registry.dst.example.com/api/v1
  token: repo-token
namespaces:
  - team-a
  - team-b
tag_mode: "3"
transfer_mode: docker
estimate_sizes: true
output_dir: /tmp/migration
events_dsn: clickhouse://localhost:9000/audit
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.src.example.com:6443", cfg.Cluster.API)
	assert.Equal(t, "admin", cfg.Cluster.Username)
	assert.True(t, cfg.Cluster.Insecure)
	assert.Equal(t, "registry.src.example.com", cfg.Source.Host)
	assert.Equal(t, "registry.dst.example.com", cfg.Destination.Host)
	assert.Equal(t, "migrated", cfg.Destination.Group)
	assert.Equal(t, "https://registry.dst.example.com/api/v1", cfg.RepoAPI.URL)
	assert.Equal(t, []string{"team-a", "team-b"}, cfg.Namespaces)
	assert.Equal(t, "3", cfg.TagMode)
	assert.Equal(t, TransferModeDocker, cfg.TransferMode)
	assert.True(t, cfg.EstimateSizes)
	assert.Equal(t, "/tmp/migration", cfg.OutputDir)
	assert.Equal(t, "clickhouse://localhost:9000/audit", cfg.EventsDSN)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ISMIGRATE_CLUSTER_PASSWORD", "env-secret")
	t.Setenv("ISMIGRATE_TAG_MODE", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Cluster.Password)
	assert.Equal(t, "5", cfg.TagMode)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "cluster:\n  password: file-secret\n")
	t.Setenv("ISMIGRATE_CLUSTER_PASSWORD", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Cluster.Password)
}

func TestComplete_PromptsOnlyMissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Cluster.Username = "preset-admin"

	prompter := StaticPrompter{Values: map[string]string{
		"Cluster API URL":               "https://api.src.example.com:6443",
		"Cluster password":              "prompted-pass",
		"Destination registry username": "pusher",
		"Destination registry password": "push-pass",
	}}
	require.NoError(t, cfg.Complete(prompter))

	assert.Equal(t, "https://api.src.example.com:6443", cfg.Cluster.API)
	assert.Equal(t, "preset-admin", cfg.Cluster.Username)
	assert.Equal(t, "prompted-pass", cfg.Cluster.Password)
	assert.Equal(t, "pusher", cfg.Destination.Username)
	assert.Equal(t, "push-pass", cfg.Destination.Password)
}

func TestComplete_TokenSkipsClusterCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.Cluster.API = "https://api.src.example.com:6443"
	cfg.Cluster.Token = "sha256~pre-issued"
	cfg.Destination.Username = "pusher"
	cfg.Destination.Password = "push-pass"

	// No prompter: with the token set nothing should need asking.
	require.NoError(t, cfg.Complete(nil))
	assert.Empty(t, cfg.Cluster.Username)
	assert.Empty(t, cfg.Cluster.Password)
}

func TestComplete_NonInteractiveNamesTheField(t *testing.T) {
	cfg := &Config{}
	err := cfg.Complete(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster.api")
	assert.Contains(t, err.Error(), "ISMIGRATE_CLUSTER_API")
}

func TestCompleteCluster_LeavesDestinationAlone(t *testing.T) {
	cfg := &Config{}
	prompter := StaticPrompter{Values: map[string]string{
		"Cluster API URL":  "https://api.src.example.com:6443",
		"Cluster username": "admin",
		"Cluster password": "hunter2",
	}}
	require.NoError(t, cfg.CompleteCluster(prompter))

	assert.Equal(t, "admin", cfg.Cluster.Username)
	assert.Empty(t, cfg.Destination.Username)
	assert.Empty(t, cfg.Destination.Password)
}

func TestCompleteDestination_LeavesClusterAlone(t *testing.T) {
	cfg := &Config{}
	prompter := StaticPrompter{Values: map[string]string{
		"Destination registry username": "pusher",
		"Destination registry password": "push-pass",
	}}
	require.NoError(t, cfg.CompleteDestination(prompter))

	assert.Equal(t, "pusher", cfg.Destination.Username)
	assert.Empty(t, cfg.Cluster.API)
}
