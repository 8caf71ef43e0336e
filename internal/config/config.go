package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variable names before they are
// matched to config keys: FASTUI_UPDATE_INTERVAL → update_interval.
const EnvPrefix = "FASTUI_"

// maxProducers bounds the producer goroutines a single counter is shared by.
const maxProducers = 1024

// Config holds all runtime configuration.
type Config struct {
	// Updater
	UpdateInterval time.Duration `koanf:"update_interval"`
	Producers      int           `koanf:"producers"`
	RunFor         time.Duration `koanf:"run_for"` // 0 = until signal

	// Output
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Console   bool   `koanf:"console"`

	// Metrics / health HTTP server; "" = disabled
	MetricsAddr string `koanf:"metrics_addr"`

	// Sample recorder; "" = disabled
	RecordPath          string        `koanf:"record_path"`
	RecordKeep          int           `koanf:"record_keep"`
	RecordPruneInterval time.Duration `koanf:"record_prune_interval"`

	// Prometheus remote write; "" = disabled
	RemoteWriteURL      string        `koanf:"remote_write_url"`
	RemoteWriteInterval time.Duration `koanf:"remote_write_interval"`
	Instance            string        `koanf:"instance"`
}

// defaults is the lowest-priority layer.
var defaults = map[string]any{
	"update_interval":       100 * time.Millisecond,
	"producers":             1,
	"run_for":               time.Duration(0),
	"log_level":             "info",
	"log_format":            "json",
	"console":               true,
	"metrics_addr":          "",
	"record_path":           "",
	"record_keep":           10000,
	"record_prune_interval": time.Minute,
	"remote_write_url":      "",
	"remote_write_interval": 15 * time.Second,
	"instance":              "",
}

// Load reads configuration from (lowest → highest priority):
//  1. Built-in defaults
//  2. YAML file at FASTUI_CONFIG_FILE (if set)
//  3. FASTUI_* environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults.
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// Layer 2: optional YAML file.
	if cfgFile := os.Getenv(EnvPrefix + "CONFIG_FILE"); cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", cfgFile, err)
		}
	}

	// Layer 3: environment variables.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key == "config_file" {
			return "" // not a config key
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// Normalise string fields.
	cfg.LogLevel = strings.TrimSpace(strings.ToLower(cfg.LogLevel))
	cfg.LogFormat = strings.TrimSpace(strings.ToLower(cfg.LogFormat))
	cfg.RemoteWriteURL = strings.TrimSpace(cfg.RemoteWriteURL)

	if cfg.Instance == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Instance = host
		} else {
			cfg.Instance = "fastui"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string

	if c.UpdateInterval <= 0 {
		errs = append(errs, "UPDATE_INTERVAL must be positive (e.g. 100ms)")
	}
	if c.Producers < 1 || c.Producers > maxProducers {
		errs = append(errs, fmt.Sprintf("PRODUCERS must be between 1 and %d", maxProducers))
	}
	if c.RunFor < 0 {
		errs = append(errs, "RUN_FOR must not be negative")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, `LOG_FORMAT must be "json" or "text"`)
	}

	if c.RecordPath != "" {
		if c.RecordKeep < 1 {
			errs = append(errs, "RECORD_KEEP must be at least 1")
		}
		if c.RecordPruneInterval < time.Second {
			errs = append(errs, "RECORD_PRUNE_INTERVAL must be at least 1s")
		}
	}
	// Path sanitisation: reject traversal sequences and null bytes.
	if strings.Contains(c.RecordPath, "..") {
		errs = append(errs, `RECORD_PATH must not contain ".." (directory traversal)`)
	}
	if strings.ContainsRune(c.RecordPath, 0) {
		errs = append(errs, "RECORD_PATH must not contain null bytes")
	}

	if c.RemoteWriteURL != "" {
		if !strings.HasPrefix(c.RemoteWriteURL, "http://") && !strings.HasPrefix(c.RemoteWriteURL, "https://") {
			errs = append(errs, "REMOTE_WRITE_URL must be an http(s) URL")
		}
		if c.RemoteWriteInterval < time.Second {
			errs = append(errs, "REMOTE_WRITE_INTERVAL must be at least 1s")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d configuration error(s):\n  - %s", len(errs), strings.Join(errs, "\n  - "))
	}
	return nil
}
