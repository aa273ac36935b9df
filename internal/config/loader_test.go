package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
placement:
  positional_cutoff: 1.5
  mcs_node_budget: 5000
minimizer:
  max_iterations: 300
  restraint_force: 10
lab:
  concurrency: 8
  task_timeout: 30s
  minimize_output: true
cache:
  enabled: true
  addr: "redis:6379"
  ttl: 1h
metrics:
  enabled: true
  listen_addr: ":9100"
log:
  level: debug
  format: json
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.5, cfg.Placement.PositionalCutoff)
	assert.Equal(t, 5000, cfg.Placement.MCSNodeBudget)
	assert.Equal(t, DefaultMCSMaxMatches, cfg.Placement.MCSMaxMatches)
	assert.Equal(t, 300, cfg.Minimizer.MaxIterations)
	assert.Equal(t, 10.0, cfg.Minimizer.RestraintForce)
	assert.Equal(t, 8, cfg.Lab.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Lab.TaskTimeout)
	assert.True(t, cfg.Lab.MinimizeOutput)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, DefaultCacheKeyPrefix, cfg.Cache.KeyPrefix)
	assert.Equal(t, ":9100", cfg.Metrics.ListenAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "placement: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "placement:\n  positional_cutoff: -1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positional_cutoff")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("FRAGMENSTEIN_LAB_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Lab.Concurrency)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FRAGMENSTEIN_PLACEMENT_POSITIONAL_CUTOFF", "2.5")
	t.Setenv("FRAGMENSTEIN_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Placement.PositionalCutoff)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultLabConcurrency, cfg.Lab.Concurrency)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPositionalCutoff, cfg.Placement.PositionalCutoff)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	changed := make(chan string, 16)
	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c.Log.Level:
		default:
		}
	}, nil))

	updated := strings.Replace(validConfigYAML, "level: debug", "level: error", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-changed:
			if level == "error" {
				return
			}
		case <-deadline:
			t.Skip("filesystem notifications unavailable")
		}
	}
}

//Personal.AI order the ending
