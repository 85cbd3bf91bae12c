// Package config builds the immutable process-wide configuration.
//
// Values are resolved once at startup and passed explicitly to the
// components that need them; nothing reads the environment inside
// request handling. Precedence: CLI flags > environment > config file
// > defaults (flags are applied by the caller after Load).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// Defaults.
const (
	DefaultAddr       = ":8080"
	DefaultStorageDir = "/var/lib/pdfserve/files"
	DefaultTTLSeconds = 3600
	DefaultTimeout    = 30 * time.Second
)

// Config holds all configuration for the render service.
type Config struct {
	Addr          string        `yaml:"addr"`          // Listen address
	APIToken      string        `yaml:"apiToken"`      // Empty = auth disabled
	StorageDir    string        `yaml:"storageDir"`    // Artifact storage root
	TTLSeconds    int           `yaml:"ttlSeconds"`    // <=0 = artifacts never expire
	PublicBaseURL string        `yaml:"publicBaseURL"` // Empty = derive from request origin
	TemplatesDir  string        `yaml:"templatesDir"`  // Empty = embedded templates
	Timeout       time.Duration `yaml:"timeout"`       // PDF conversion timeout
	Workers       int           `yaml:"workers"`       // 0 = derive from GOMAXPROCS
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:       DefaultAddr,
		StorageDir: DefaultStorageDir,
		TTLSeconds: DefaultTTLSeconds,
		Timeout:    DefaultTimeout,
	}
}

// TTL returns the artifact lifetime as a duration. Zero or less means
// never expires.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// AuthEnabled reports whether the access gate is armed.
func (c *Config) AuthEnabled() bool {
	return c.APIToken != ""
}

// Load builds the configuration from defaults, an optional YAML file,
// and the environment, in that order. An empty path skips the file.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	applyEnv(cfg, logger)
	warnUnknownEnvVars(logger)

	// A trailing slash on the public base would double up in links.
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	return cfg, nil
}

// envPrefix scopes the service's own environment variables.
// API_TOKEN, PDF_STORAGE_DIR, PDF_TTL_SECONDS and PUBLIC_BASE_URL keep
// their historical unprefixed names.
const envPrefix = "PDFSERVE_"

// knownEnvVars lists valid PDFSERVE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PDFSERVE_ADDR":          true,
	"PDFSERVE_TEMPLATES_DIR": true,
	"PDFSERVE_TIMEOUT":       true,
	"PDFSERVE_WORKERS":       true,
}

// applyEnv overlays recognized environment variables onto cfg.
func applyEnv(cfg *Config, logger *slog.Logger) {
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("PDF_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}

	if v := os.Getenv("PDF_TTL_SECONDS"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			// Invalid value falls back to the default rather than killing
			// the process.
			logger.Warn("invalid PDF_TTL_SECONDS, using default",
				"value", v,
				"default", DefaultTTLSeconds,
			)
		} else {
			cfg.TTLSeconds = ttl
		}
	}

	if v := os.Getenv(envPrefix + "ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(envPrefix + "TEMPLATES_DIR"); v != "" {
		cfg.TemplatesDir = v
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			logger.Warn("invalid PDFSERVE_TIMEOUT, using default",
				"value", v,
				"default", DefaultTimeout.String(),
			)
		}
	}
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		} else {
			logger.Warn("invalid PDFSERVE_WORKERS, ignoring", "value", v)
		}
	}
}

// warnUnknownEnvVars logs a warning for unrecognized PDFSERVE_* variables.
// Helps catch typos like PDFSERVE_TEMPLATE_DIR.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}
