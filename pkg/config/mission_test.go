package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMission = `
mission:
  name: survey
  behavior: count_twice
  timeout: 5m
  description: count twice around the block
  settings:
    - name: target
      kind: int
      value: 10
`

func TestParseMission(t *testing.T) {
	f, err := Parse([]byte(sampleMission))
	require.NoError(t, err)

	assert.Equal(t, "survey", f.Mission.Name)
	assert.Equal(t, "count_twice", f.Mission.Behavior)
	assert.Equal(t, 5*time.Minute, f.Mission.Timeout.Std())

	p, ok := f.Mission.Settings.Get("target")
	require.True(t, ok, "target parameter missing")
	v, err := p.AsInt()
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestParseMissionRequiresNameAndBehavior(t *testing.T) {
	_, err := Parse([]byte("mission:\n  name: survey\n"))
	assert.Error(t, err, "behavior is required")

	_, err = Parse([]byte("mission:\n  behavior: wait\n"))
	assert.Error(t, err, "name is required")
}

func TestParseMissionIgnoresUnknownFields(t *testing.T) {
	input := sampleMission + "\nfuture_section:\n  key: value\n"
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "survey", f.Mission.Name)
}

func TestParseMissionRejectsUnknownParameterKind(t *testing.T) {
	input := `
mission:
  name: survey
  behavior: wait
  settings:
    - name: x
      kind: quaternion
      value: 1
`
	_, err := Parse([]byte(input))
	assert.Error(t, err)
}

func TestMissionFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMission), 0o644))

	f, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, f.Write(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.Mission.Name, back.Mission.Name)
	assert.Equal(t, f.Mission.Timeout, back.Mission.Timeout)
	assert.Equal(t, f.Mission.Settings.Len(), back.Mission.Settings.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadCLIDefaultsWhenFileAbsent(t *testing.T) {
	cfg, err := LoadCLI(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.NotEmpty(t, cfg.StorePath)
}

func TestLoadCLIFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
store_path = "/tmp/runs.db"
log_level = "debug"
log_format = "json"
metrics_listen = ":9090"
tracing_enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsListen)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadCLIRejectsInvalidLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "loud"`), 0o644))

	_, err := LoadCLI(path)
	assert.Error(t, err)
}
