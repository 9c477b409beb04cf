// Package config loads the daemon configuration with the precedence
// ENV > file > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// GuideBase is the schedule-source base endpoint. Required.
	GuideBase string

	// Listen is the HTTP listen address for the host-facing API.
	Listen string

	// RefreshInterval is the steady-state roster polling cadence.
	RefreshInterval time.Duration

	// FetchTimeout bounds every remote guide request.
	FetchTimeout time.Duration

	// RetryDelay and Retries define the resolution retry envelope.
	RetryDelay time.Duration
	Retries    int

	// AudioFilter selects demuxed-only or muxed-only channels ("demuxed",
	// "muxed", or empty for no filtering).
	AudioFilter string

	LogLevel   string
	LogService string
}

// fileConfig is the YAML representation; durations are Go duration strings.
type fileConfig struct {
	GuideBase       string `yaml:"guideBase"`
	Listen          string `yaml:"listen"`
	RefreshInterval string `yaml:"refreshInterval"`
	FetchTimeout    string `yaml:"fetchTimeout"`
	RetryDelay      string `yaml:"retryDelay"`
	Retries         *int   `yaml:"retries"`
	AudioFilter     string `yaml:"audioFilter"`
	LogLevel        string `yaml:"logLevel"`
	LogService      string `yaml:"logService"`
}

func defaults() Config {
	return Config{
		Listen:          ":8080",
		RefreshInterval: 10 * time.Second,
		FetchTimeout:    5 * time.Second,
		RetryDelay:      2 * time.Second,
		Retries:         3,
		LogLevel:        "info",
		LogService:      "nextup",
	}
}

// Loader loads configuration from an optional YAML file and the
// environment.
type Loader struct {
	path string
}

// NewLoader returns a loader for the given config file path; an empty path
// skips the file layer.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load merges defaults, the config file (when present) and environment
// variables, then validates the result.
func (l *Loader) Load() (Config, error) {
	cfg := defaults()

	if l.path != "" {
		if err := mergeFile(&cfg, l.path); err != nil {
			return Config{}, err
		}
	}
	mergeEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.GuideBase != "" {
		cfg.GuideBase = fc.GuideBase
	}
	if fc.Listen != "" {
		cfg.Listen = fc.Listen
	}
	if fc.AudioFilter != "" {
		cfg.AudioFilter = fc.AudioFilter
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogService != "" {
		cfg.LogService = fc.LogService
	}
	if fc.Retries != nil {
		cfg.Retries = *fc.Retries
	}
	for _, d := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{fc.RefreshInterval, "refreshInterval", &cfg.RefreshInterval},
		{fc.FetchTimeout, "fetchTimeout", &cfg.FetchTimeout},
		{fc.RetryDelay, "retryDelay", &cfg.RetryDelay},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

func mergeEnv(cfg *Config) {
	cfg.GuideBase = ParseString("NEXTUP_GUIDE_BASE", cfg.GuideBase)
	cfg.Listen = ParseString("NEXTUP_LISTEN", cfg.Listen)
	cfg.RefreshInterval = ParseDuration("NEXTUP_REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.FetchTimeout = ParseDuration("NEXTUP_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RetryDelay = ParseDuration("NEXTUP_RETRY_DELAY", cfg.RetryDelay)
	cfg.Retries = ParseInt("NEXTUP_RETRIES", cfg.Retries)
	cfg.AudioFilter = ParseString("NEXTUP_AUDIO_FILTER", cfg.AudioFilter)
	cfg.LogLevel = ParseString("NEXTUP_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("NEXTUP_LOG_SERVICE", cfg.LogService)
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.GuideBase == "" {
		return fmt.Errorf("guide base endpoint is required (NEXTUP_GUIDE_BASE)")
	}
	u, err := url.Parse(c.GuideBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("guide base endpoint %q is not a valid URL", c.GuideBase)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive, got %s", c.RetryDelay)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	switch c.AudioFilter {
	case "", "demuxed", "muxed":
	default:
		return fmt.Errorf("audio filter must be empty, %q or %q, got %q", "demuxed", "muxed", c.AudioFilter)
	}
	return nil
}
