package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/geometry"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SLACK_TOKEN", "SLACK_CHANNEL", "VIGIL_MAX_FRAME_DIFF",
		"VIGIL_DB_PATH", "VIGIL_LISTEN_ADDR", "VIGIL_OUT_DIR", "VIGIL_TRACKED_CLASSES",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.SlackToken)
	assert.Equal(t, 1, cfg.MaxFrameDiff)
	assert.Equal(t, "vigil.db", cfg.DBPath)
	assert.Equal(t, "localhost:8080", cfg.ListenAddr)
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, []string{"car", "person", "truck"}, cfg.TrackedClasses)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLACK_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL", "#alerts")
	t.Setenv("VIGIL_MAX_FRAME_DIFF", "30")
	t.Setenv("VIGIL_TRACKED_CLASSES", "car,person")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", cfg.SlackToken)
	assert.Equal(t, "#alerts", cfg.SlackChannel)
	assert.Equal(t, 30, cfg.MaxFrameDiff)
	assert.Equal(t, []string{"car", "person"}, cfg.TrackedClasses)
}

func TestValidate(t *testing.T) {
	base := Config{MaxFrameDiff: 1, TrackedClasses: []string{"car"}}

	cfg := base
	cfg.SlackToken = "xoxb-test"
	assert.Error(t, cfg.Validate(), "token without channel")

	cfg = base
	cfg.MaxFrameDiff = -1
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.TrackedClasses = nil
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.SlackToken = "xoxb-test"
	cfg.SlackChannel = "#alerts"
	assert.NoError(t, cfg.Validate())
}

func TestLoadRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`[[[0,0],[100,0],[100,100],[0,100]],[[50,0],[150,0],[150,100]]]`), 0o644))

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, geometry.Point{X: 100, Y: 100}, regions[0][2])
	assert.Len(t, regions[1], 3)
}

func TestLoadRegionsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRegions(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644))
	_, err = LoadRegions(bad)
	assert.Error(t, err)

	degenerate := filepath.Join(dir, "degenerate.json")
	require.NoError(t, os.WriteFile(degenerate, []byte(`[[[0,0],[1,1]]]`), 0o644))
	_, err = LoadRegions(degenerate)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = LoadRegions(empty)
	assert.Error(t, err)
}

func TestDefaultRegions(t *testing.T) {
	regions := DefaultRegions()
	require.Len(t, regions, 2)
	for _, r := range regions {
		assert.GreaterOrEqual(t, len(r), 3)
	}
}
