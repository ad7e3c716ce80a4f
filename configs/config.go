package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/i2y/smsbridge/internal/flex"
)

// envPrefix is prepended to every environment variable name ("SMSBRIDGE_").
const envPrefix = "smsbridge"

// FileConfig defines the structure loaded from the YAML configuration file.
// Every section is layered over the built-in tables, never replacing them wholesale.
type FileConfig struct {
	// Overrides are merged field by field over the built-in rule set of the same function.
	Overrides map[string]flex.Override `yaml:"overrides"`
	// Aliases are merged key by key over the built-in per-function alias tables.
	Aliases map[string]map[string]string `yaml:"aliases"`
	// Exclude names extra functions that must not be registered.
	Exclude []string `yaml:"exclude"`
}

// Config holds the final application configuration, merged from file and environment variables.
// Fields are loaded from environment variables with the prefix "SMSBRIDGE_", potentially overriding file settings.
type Config struct {
	// Config File Path (Loaded first from env). Empty disables the file.
	ConfigFilePath string `envconfig:"CONFIG_FILE" default:"configs/smsbridge.yaml"`

	// File-loaded fields
	Overrides map[string]flex.Override     `ignored:"true"`
	Aliases   map[string]map[string]string `ignored:"true"`
	Exclude   []string                     `ignored:"true"`

	// Environment-overridable fields
	MNotifyAPIKey            string        `envconfig:"MNOTIFY_API_KEY"`
	MNotifyBaseURL           string        `envconfig:"MNOTIFY_BASE_URL" default:"https://api.mnotify.com/api"`
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr                string        `envconfig:"ADMIN_ADDR" default:":8081"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// MergeOverrides layers the file overrides over base and returns a new map.
func (c *Config) MergeOverrides(base map[string]flex.Override) map[string]flex.Override {
	out := make(map[string]flex.Override, len(base)+len(c.Overrides))
	for name, o := range base {
		out[name] = o
	}
	for name, o := range c.Overrides {
		out[name] = out[name].Merge(o)
	}
	return out
}

// MergeAliases layers the file alias tables over base and returns a new map.
func (c *Config) MergeAliases(base map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(base)+len(c.Aliases))
	for name, table := range base {
		out[name] = copyTable(table)
	}
	for name, table := range c.Aliases {
		merged := copyTable(out[name])
		for alias, canonical := range table {
			merged[alias] = canonical
		}
		out[name] = merged
	}
	return out
}

// MergeExclude appends the file exclusions to base without duplicates.
func (c *Config) MergeExclude(base []string) []string {
	seen := make(map[string]struct{}, len(base)+len(c.Exclude))
	out := make([]string, 0, len(base)+len(c.Exclude))
	for _, name := range append(append([]string(nil), base...), c.Exclude...) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func copyTable(table map[string]string) map[string]string {
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Load loads configuration first from environment variables (to get file path),
// then from the specified YAML file, and finally merges/overrides with environment variables again.
// A missing file at the default path is not an error.
func Load() (*Config, error) {
	// 1. Load initial config from Env (primarily to get ConfigFilePath)
	var initialCfg Config
	if err := envconfig.Process(envPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. Load config from YAML file if path is specified
	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
			}
			slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
		case errors.Is(err, os.ErrNotExist) && os.Getenv("SMSBRIDGE_CONFIG_FILE") == "":
			slog.Info("Default config file not found, using built-in tables.", "path", initialCfg.ConfigFilePath)
		default:
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
	} else {
		slog.Info("No config file path specified (SMSBRIDGE_CONFIG_FILE), using defaults/env vars only.")
	}

	// 3. Create final config, starting with file values, then process Env vars again for overrides.
	finalCfg := initialCfg
	finalCfg.Overrides = fileCfg.Overrides
	finalCfg.Aliases = fileCfg.Aliases
	finalCfg.Exclude = fileCfg.Exclude

	if err := envconfig.Process(envPrefix, &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	if finalCfg.MNotifyAPIKey == "" {
		slog.Warn("SMSBRIDGE_MNOTIFY_API_KEY is not set; MNotify calls will be rejected upstream.")
	}
	return &finalCfg, nil
}
