package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, rrt.DefaultConfig(), cfg.Planner)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5432, cfg.PostGIS.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	doc := `
planner:
  goal_bias: 0.1
  branch_length: 40
  space:
    front_angle: 30
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("RRTPLAN_PLANNER_BRANCH_LENGTH", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Planner.GoalBias)
	assert.Equal(t, 75.0, cfg.Planner.BranchLength)
	assert.Equal(t, 30.0, cfg.Planner.Space.FrontAngle)
	assert.Equal(t, 3.0, cfg.Planner.Space.FrontScale)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	doc := `
planner:
  goal_bias: 2
log:
  level: loud
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goal bias")
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMetricsListenAddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  addr: 127.0.0.1:9101\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9101", cfg.Metrics.ListenAddr(""))
	assert.Equal(t, ":9200", cfg.Metrics.ListenAddr(":9200"))

	t.Setenv("RRTPLAN_METRICS_ADDR", ":9300")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9300", cfg.Metrics.ListenAddr(""))

	assert.Empty(t, MetricsConfig{}.ListenAddr(""))
}
