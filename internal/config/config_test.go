package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seoaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFromFileDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	require.Empty(t, cfg.IgnorePatterns)

	want := DefaultConfig()
	want.IgnorePatterns = cfg.IgnorePatterns
	require.Equal(t, want, cfg)
	require.False(t, cfg.PageSpeedEnabled())
}

func TestLoadFromFileOverrides(t *testing.T) {
	path := writeConfig(t, `
max_pages: 120
timeout: 3s
crawl_timeout: 90s
rps: 2.5
ignore_patterns: ["/admin/*", "*.pdf"]
pagespeed_api_key: secret
pagespeed_strategy: desktop
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, 120, cfg.MaxPages)
	require.Equal(t, 3*time.Second, cfg.Timeout)
	require.Equal(t, 90*time.Second, cfg.CrawlTimeout)
	require.InDelta(t, 2.5, cfg.RPS, 0.0001)
	require.Equal(t, []string{"/admin/*", "*.pdf"}, cfg.IgnorePatterns)
	require.True(t, cfg.PageSpeedEnabled())
	require.Equal(t, "desktop", cfg.PageSpeedStrategy)
}

func TestLoadFromFileEnvOverridesFile(t *testing.T) {
	t.Setenv("SEOAUDIT_MAX_PAGES", "7")
	t.Setenv("SEOAUDIT_LOG_LEVEL", "debug")

	cfg, err := LoadFromFile(writeConfig(t, "max_pages: 120\n"))
	require.NoError(t, err)

	require.Equal(t, 7, cfg.MaxPages)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFileRejectsInvalidValues(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "max_pages: 0\ndelay: -1s\n"))
	require.ErrorIs(t, err, ErrInvalidMaxPages)
	require.ErrorIs(t, err, ErrNegativeDelay)
}

func TestLoadFromFileMissingExplicitPath(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "timeout", mutate: func(c *Config) { c.Timeout = 0 }, want: ErrInvalidTimeout},
		{name: "crawl timeout", mutate: func(c *Config) { c.CrawlTimeout = -time.Second }, want: ErrInvalidCrawlTimeout},
		{name: "body", mutate: func(c *Config) { c.MaxBodyBytes = 0 }, want: ErrInvalidMaxBody},
		{name: "rps", mutate: func(c *Config) { c.RPS = -1 }, want: ErrNegativeRPS},
		{name: "retries", mutate: func(c *Config) { c.Retries = -2 }, want: ErrNegativeRetries},
		{name: "strategy", mutate: func(c *Config) { c.PageSpeedStrategy = "tablet" }, want: ErrInvalidStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	require.NoError(t, DefaultConfig().Validate())
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, SampleConfig()))
	require.NoError(t, err)
	require.Equal(t, 50, cfg.MaxPages)
}
