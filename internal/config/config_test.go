package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithRequiredEnv(t *testing.T) {
	t.Setenv("NEXTUP_GUIDE_BASE", "http://guide.local:8080")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	require.Equal(t, "http://guide.local:8080", cfg.GuideBase)
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, 10*time.Second, cfg.RefreshInterval)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	require.Equal(t, 2*time.Second, cfg.RetryDelay)
	require.Equal(t, 3, cfg.Retries)
	require.Empty(t, cfg.AudioFilter)
}

func TestLoadMissingGuideBase(t *testing.T) {
	_, err := NewLoader("").Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "guide base endpoint is required")
}

func TestLoadRejectsInvalidGuideBase(t *testing.T) {
	t.Setenv("NEXTUP_GUIDE_BASE", "not a url")

	_, err := NewLoader("").Load()
	require.Error(t, err)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("NEXTUP_GUIDE_BASE", "http://guide.local")
	t.Setenv("NEXTUP_REFRESH_INTERVAL", "30s")
	t.Setenv("NEXTUP_RETRIES", "5")
	t.Setenv("NEXTUP_AUDIO_FILTER", "demuxed")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.RefreshInterval)
	require.Equal(t, 5, cfg.Retries)
	require.Equal(t, "demuxed", cfg.AudioFilter)
}

func TestFileLayerAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
guideBase: http://from-file
listen: ":9090"
refreshInterval: 20s
retries: 1
`), 0o644))

	t.Setenv("NEXTUP_GUIDE_BASE", "http://from-env")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	// ENV beats file; file beats defaults.
	require.Equal(t, "http://from-env", cfg.GuideBase)
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, 20*time.Second, cfg.RefreshInterval)
	require.Equal(t, 1, cfg.Retries)
}

func TestFileWithInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refreshInterval: soon\n"), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "refreshInterval")
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		c := defaults()
		c.GuideBase = "http://guide.local"
		return c
	}

	c := base()
	c.RefreshInterval = 0
	require.Error(t, c.Validate())

	c = base()
	c.Retries = -1
	require.Error(t, c.Validate())

	c = base()
	c.AudioFilter = "stereo"
	require.Error(t, c.Validate())

	c = base()
	require.NoError(t, c.Validate())
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("NEXTUP_TEST_INT", "abc")
	require.Equal(t, 7, ParseInt("NEXTUP_TEST_INT", 7))

	t.Setenv("NEXTUP_TEST_DUR", "fast")
	require.Equal(t, time.Second, ParseDuration("NEXTUP_TEST_DUR", time.Second))

	t.Setenv("NEXTUP_TEST_BOOL", "maybe")
	require.True(t, ParseBool("NEXTUP_TEST_BOOL", true))

	t.Setenv("NEXTUP_TEST_BOOL2", "yes")
	require.True(t, ParseBool("NEXTUP_TEST_BOOL2", false))
}
