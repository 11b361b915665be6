// Package config loads seoaudit settings from defaults, an optional YAML file
// and SEOAUDIT_* environment variables. CLI flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrInvalidCrawlTimeout = errors.New("crawl_timeout must be positive")
	ErrInvalidMaxPages     = errors.New("max_pages must be positive")
	ErrInvalidMaxBody      = errors.New("max_body_bytes must be positive")
	ErrNegativeDelay       = errors.New("delay cannot be negative")
	ErrNegativeRPS         = errors.New("rps cannot be negative")
	ErrNegativeRetries     = errors.New("retries cannot be negative")
	ErrInvalidStrategy     = errors.New("pagespeed_strategy must be mobile or desktop")
)

// Config holds all seoaudit settings.
type Config struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	MaxPages       int           `mapstructure:"max_pages"`
	CrawlTimeout   time.Duration `mapstructure:"crawl_timeout"`
	Retries        int           `mapstructure:"retries"`
	Delay          time.Duration `mapstructure:"delay"`
	RPS            float64       `mapstructure:"rps"`
	IgnorePatterns []string      `mapstructure:"ignore_patterns"`

	PageSpeedAPIKey   string        `mapstructure:"pagespeed_api_key"`
	PageSpeedEndpoint string        `mapstructure:"pagespeed_endpoint"`
	PageSpeedStrategy string        `mapstructure:"pagespeed_strategy"`
	PageSpeedTimeout  time.Duration `mapstructure:"pagespeed_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:        ":8080",
		UserAgent:         "seoaudit/1.0 (+https://github.com/idilettant/seoaudit)",
		Timeout:           10 * time.Second,
		MaxBodyBytes:      2 << 20,
		MaxPages:          50,
		CrawlTimeout:      5 * time.Minute,
		PageSpeedEndpoint: "https://www.googleapis.com/pagespeedonline/v5/runPagespeed",
		PageSpeedStrategy: "mobile",
		PageSpeedTimeout:  60 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load searches the standard locations for seoaudit.yaml.
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration with the following precedence (lowest to highest):
// defaults, the config file (configPath, or seoaudit.yaml in ., $HOME and
// $XDG_CONFIG_HOME/seoaudit), SEOAUDIT_* environment variables.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_body_bytes", defaults.MaxBodyBytes)
	v.SetDefault("max_pages", defaults.MaxPages)
	v.SetDefault("crawl_timeout", defaults.CrawlTimeout)
	v.SetDefault("retries", defaults.Retries)
	v.SetDefault("delay", defaults.Delay)
	v.SetDefault("rps", defaults.RPS)
	v.SetDefault("ignore_patterns", []string{})
	v.SetDefault("pagespeed_api_key", "")
	v.SetDefault("pagespeed_endpoint", defaults.PageSpeedEndpoint)
	v.SetDefault("pagespeed_strategy", defaults.PageSpeedStrategy)
	v.SetDefault("pagespeed_timeout", defaults.PageSpeedTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)

	v.SetConfigName("seoaudit")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "seoaudit"))
		}
	}

	v.SetEnvPrefix("SEOAUDIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges. It returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.CrawlTimeout <= 0 {
		errs = append(errs, ErrInvalidCrawlTimeout)
	}
	if c.MaxPages <= 0 {
		errs = append(errs, ErrInvalidMaxPages)
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, ErrInvalidMaxBody)
	}
	if c.Delay < 0 {
		errs = append(errs, ErrNegativeDelay)
	}
	if c.RPS < 0 {
		errs = append(errs, ErrNegativeRPS)
	}
	if c.Retries < 0 {
		errs = append(errs, ErrNegativeRetries)
	}

	switch strings.ToLower(c.PageSpeedStrategy) {
	case "mobile", "desktop":
	default:
		errs = append(errs, ErrInvalidStrategy)
	}

	return errors.Join(errs...)
}

// PageSpeedEnabled reports whether an API key is configured for external performance scores.
func (c *Config) PageSpeedEnabled() bool {
	return c.PageSpeedAPIKey != ""
}

// SampleConfig returns a commented configuration file.
func SampleConfig() string {
	return `# seoaudit configuration
# Save as ./seoaudit.yaml, ~/seoaudit.yaml or $XDG_CONFIG_HOME/seoaudit/seoaudit.yaml.
# Every key can also be set as SEOAUDIT_<KEY>, e.g. SEOAUDIT_MAX_PAGES=100.

listen_addr: ":8080"
timeout: 10s
max_body_bytes: 2097152
max_pages: 50
crawl_timeout: 5m
retries: 0
delay: 0s
rps: 0

# Paths the crawler never follows, e.g. "/admin/*" or "*.pdf".
ignore_patterns: []

# PageSpeed Insights scores for the homepage of crawls and pre-launch audits.
pagespeed_api_key: ""
pagespeed_strategy: mobile
pagespeed_timeout: 60s

log_level: info
log_format: text
`
}
