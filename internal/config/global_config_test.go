package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, ModeScan, cfg.Mode)
	assert.Equal(t, 10, cfg.ValidatorConfig.TimeoutSecs)
	assert.Equal(t, 5000, cfg.ValidatorConfig.AWSRetryDelayMs)
	assert.Equal(t, 10, cfg.SourceMapConfig.FetchTimeoutSecs)
	assert.True(t, cfg.SourceMapConfig.Enabled)
	assert.Equal(t, StorageBackendSQLite, cfg.StorageConfig.Backend)
	assert.False(t, cfg.ScannerConfig.RecordRepeatOccurrences)
	assert.Empty(t, cfg.ScannerConfig.FalsePositiveTerms)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, "")

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeScan, cfg.Mode)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"mode": "revalidate",
		"log_config": {"log_level": "debug"},
		"scanner_config": {"enabled_families": ["Slack"], "max_pair_candidates": 4},
		"storage_config": {"backend": "memory"}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0o644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeRevalidate, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, []string{"Slack"}, cfg.ScannerConfig.EnabledFamilies)
	assert.Equal(t, 4, cfg.ScannerConfig.MaxPairCandidates)
	assert.Equal(t, StorageBackendMemory, cfg.StorageConfig.Backend)
	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.ValidatorConfig.TimeoutSecs)
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
mode: automated
validator_config:
  aws_retry_delay_ms: 250
  endpoints:
    Slack: http://127.0.0.1:9999
source_map_config:
  enabled: false
scheduler_config:
  interval_minutes: 15
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0o644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, ModeAutomated, cfg.Mode)
	assert.Equal(t, 250, cfg.ValidatorConfig.AWSRetryDelayMs)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.ValidatorConfig.Endpoints["Slack"])
	assert.False(t, cfg.SourceMapConfig.Enabled)
	assert.Equal(t, 15, cfg.SchedulerConfig.IntervalMinutes)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: [unclosed"), 0o644))

	_, err := LoadGlobalConfig(configFile, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")
}

func TestGetConfigPath_EnvVariable(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "from-env.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("mode: list"), 0o644))
	t.Setenv(ConfigPathEnv, configFile)

	assert.Equal(t, configFile, GetConfigPath(""))
}

func TestGetConfigPath_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnv, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0o644))

	assert.Equal(t, filepath.Join(dir, "config.json"), GetConfigPath(""))
}
