// Package config loads qrchart settings from a config file, .env files and
// QRCHART_* environment variables.
//
// Precedence, lowest to highest:
//
//	built-in defaults → config file → .env file → environment → CLI flags
//
// The config file may be YAML (.yaml/.yml, parsed with gopkg.in/yaml.v3) or
// JSON with comments (.json/.jsonc, comments stripped with
// github.com/tidwall/jsonc before encoding/json). Environment variables are
// bound with github.com/caarlos0/env and .env files with
// github.com/joho/godotenv. CLI flags are applied by the cli package.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/qrchart/internal/logger"
	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QRCHART_"

// DefaultEnvFile is loaded when no --env-file is given. A missing file is
// not an error.
const DefaultEnvFile = ".env"

// Config holds every setting a qrchart command can read.
//
// Field tags bind the same setting in all three sources: `yaml` for YAML
// files, `json` for JSON/JSONC files and `env` for environment variables
// (with EnvPrefix added).
type Config struct {
	// Endpoint is the chart service URL posted to by the chart renderer.
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"ENDPOINT"`

	// Level is the error-correction level: L, M, Q or H.
	Level string `yaml:"level" json:"level" env:"LEVEL"`

	// Margin is the quiet-zone width in modules (>= 0).
	Margin int `yaml:"margin" json:"margin" env:"MARGIN"`

	// Width and Height are the default image size in pixels.
	// Height 0 means "same as width".
	Width  int `yaml:"width" json:"width" env:"WIDTH"`
	Height int `yaml:"height" json:"height" env:"HEIGHT"`

	// Timeout bounds a single chart request, e.g. "10s". 0 disables it.
	Timeout Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT"`

	// ProxyURL routes chart requests through an HTTP proxy when set.
	ProxyURL string `yaml:"proxy" json:"proxy" env:"PROXY"`

	// Renderer selects "chart" (remote) or "local" (in-process).
	Renderer string `yaml:"renderer" json:"renderer" env:"RENDERER"`

	// LogFormat is "text" or "json"; LogLevel is debug, info, warn or error.
	LogFormat string `yaml:"logFormat" json:"logFormat" env:"LOG_FORMAT"`
	LogLevel  string `yaml:"logLevel" json:"logLevel" env:"LOG_LEVEL"`

	// Listen is the address used by the serve command.
	Listen string `yaml:"listen" json:"listen" env:"LISTEN"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:  qrcode.DefaultEndpoint,
		Level:     qrcode.DefaultErrorCorrectionLevel.String(),
		Margin:    qrcode.DefaultMargin,
		Width:     300,
		Timeout:   Duration(30 * time.Second),
		Renderer:  model.RendererChart.String(),
		LogFormat: string(logger.FormatText),
		LogLevel:  "info",
		Listen:    ":8080",
	}
}

// Load builds a Config from defaults, the optional config file at path,
// the given .env files (or DefaultEnvFile when none are given) and the
// environment, then validates it.
//
// Errors are returned as model.CLIError with ExitConfig.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfig, "invalid configuration", err)
	}
	return cfg, nil
}

// LoadFile overlays the settings found in a YAML or JSON/JSONC file onto c.
// Keys absent from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.WrapCLIError(model.ExitConfig,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return model.WrapCLIError(model.ExitConfig, "failed to read config file", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json", ".jsonc":
		// Strip comments and trailing commas so hand-edited files parse.
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return model.NewCLIError(model.ExitConfig,
			fmt.Sprintf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", ext))
	}
	if err != nil {
		return model.WrapCLIError(model.ExitConfig,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// LoadEnv overlays QRCHART_* environment variables onto c. Variables that
// are not set leave the field untouched.
func (c *Config) LoadEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return model.WrapCLIError(model.ExitConfig, "failed to parse environment variables", err)
	}
	return nil
}

// loadEnvFiles loads .env files into the process environment. Existing
// variables are not overwritten. An explicitly named file must exist; the
// implicit DefaultEnvFile may be missing.
func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return model.WrapCLIError(model.ExitConfig, "failed to load .env file", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return model.WrapCLIError(model.ExitConfig, "failed to load env file", err)
	}
	return nil
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := qrcode.ParseErrorCorrectionLevel(c.Level); err != nil {
		return err
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must be 0 or greater, got %d", c.Margin)
	}
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.Height < 0 {
		return fmt.Errorf("height must be positive or 0 (same as width), got %d", c.Height)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := model.ParseRendererKind(c.Renderer); err != nil {
		return err
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute URL, got %q", c.Endpoint)
	}
	if c.ProxyURL != "" {
		if u, err := url.Parse(c.ProxyURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("proxy must be an absolute URL, got %q", c.ProxyURL)
		}
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ErrorCorrectionLevel returns Level as a typed value. Call Validate first.
func (c *Config) ErrorCorrectionLevel() qrcode.ErrorCorrectionLevel {
	level, _ := qrcode.ParseErrorCorrectionLevel(c.Level)
	return level
}

// RendererKind returns Renderer as a typed value. Call Validate first.
func (c *Config) RendererKind() model.RendererKind {
	kind, _ := model.ParseRendererKind(c.Renderer)
	return kind
}

// EffectiveHeight returns Height, or Width when Height is 0.
func (c *Config) EffectiveHeight() int {
	if c.Height == 0 {
		return c.Width
	}
	return c.Height
}

// Duration is a time.Duration that reads and writes strings such as "15s"
// in YAML, JSON and environment variables.
type Duration time.Duration

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText parses a time.ParseDuration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration like time.Duration.String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
