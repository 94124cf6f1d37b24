package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "research.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "research-tasks", cfg.Service.TaskQueue)
	assert.Equal(t, 5, cfg.Research.MaxConcurrentSearches)
	assert.Equal(t, 256, cfg.Streaming.RingCapacity)
	assert.Equal(t, "http://llm-service:8000", cfg.Capabilities.LLMServiceURL)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  task_queue: custom-queue
research:
  max_concurrent_searches: 8
capabilities:
  llm_service_url: http://localhost:9000
  request_timeout: 30s
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-queue", cfg.Service.TaskQueue)
	assert.Equal(t, 8, cfg.Research.MaxConcurrentSearches)
	assert.Equal(t, "http://localhost:9000", cfg.Capabilities.LLMServiceURL)
	assert.Equal(t, "30s", cfg.Capabilities.RequestTimeout.String())
}

func TestEnvOverrideWins(t *testing.T) {
	path := writeConfig(t, `
capabilities:
  llm_service_url: http://from-file:8000
`)
	t.Setenv("LLM_SERVICE_URL", "http://from-env:8000")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.Capabilities.LLMServiceURL)
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "service: [not: a map")
	_, err := LoadFile(path)
	assert.Error(t, err)
}
