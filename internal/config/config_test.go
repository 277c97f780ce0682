package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.2, cfg.Routing.MinConfidence)
	assert.Equal(t, 10, cfg.Session.MaxSteps)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.Equal(t, time.Duration(0), cfg.SessionTimeout())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Scoring, cfg.Scoring)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentat.toml")
	body := `
[routing]
min_confidence = 0.5
max_recommendations = 5
default_main_param = "input"

[session]
max_steps = 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Routing.MinConfidence)
	assert.Equal(t, 5, cfg.Routing.MaxRecommendations)
	assert.Equal(t, 3, cfg.Session.MaxSteps)
	// untouched sections keep defaults
	assert.Equal(t, 0.2, cfg.Scoring.LevelMatchBonus)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentat.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\nmax_steps = 0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMainParamLookup(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "issue", cfg.MainParam("debugging_approach"))
	assert.Equal(t, "query", cfg.MainParam("unknown_tool"))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "mentat.toml")
	cfg := Default()
	cfg.Session.MaxSteps = 7
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Session.MaxSteps)
}
