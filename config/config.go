// Package config loads runtime settings: defaults, then an optional YAML
// file, then a .env file, then MINIQUEST_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	goerrors "github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MINIQUEST_"

// Config holds the application configuration.
type Config struct {
	ContentDir string    `yaml:"content_dir"` // empty means the embedded world
	SaveFile   string    `yaml:"save_file"`
	Seed       int64     `yaml:"seed"` // 0 seeds from the clock
	HazardOdds int       `yaml:"hazard_odds"`
	Delay      string    `yaml:"delay"` // pause between console combat lines
	Width      int       `yaml:"width"`
	Log        LogConfig `yaml:"log"`
}

// LogConfig configures the log file.
type LogConfig struct {
	File   string `yaml:"file"` // empty discards logs
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SaveFile:   "savegame.json",
		HazardOdds: 5,
		Delay:      "0s",
		Width:      80,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an
// empty path skips it. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// Load .env file if it exists; real environment variables still win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decodeYAML overlays the YAML document in r. Unknown keys are rejected.
func (c *Config) decodeYAML(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(c)
}

// applyEnv overlays MINIQUEST_* variables found through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	el := goerrors.NewErrorList()

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				el.Add(fmt.Errorf("invalid %s%s value: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("CONTENT_DIR", &c.ContentDir)
	str("SAVE_FILE", &c.SaveFile)
	str("DELAY", &c.Delay)
	str("LOG_FILE", &c.Log.File)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	integer("HAZARD_ODDS", &c.HazardOdds)
	integer("WIDTH", &c.Width)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			el.Add(fmt.Errorf("invalid %sSEED value: %w", EnvPrefix, err))
		} else {
			c.Seed = n
		}
	}

	return el.Err()
}

// Validate reports every problem with the settings at once.
func (c *Config) Validate() error {
	el := goerrors.NewErrorList()

	if c.SaveFile == "" {
		el.Add(fmt.Errorf("save_file is required"))
	}
	if c.HazardOdds < 0 {
		el.Add(fmt.Errorf("hazard_odds must not be negative"))
	}
	if c.Width < 20 {
		el.Add(fmt.Errorf("width must be at least 20"))
	}

	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		el.Add(fmt.Errorf("parsing delay: %w", err))
	} else if d < 0 {
		el.Add(fmt.Errorf("delay must not be negative"))
	}

	el.Add(c.Log.Validate())

	return el.Err()
}

// DelayDuration returns the parsed combat pacing delay. Call Validate first.
func (c *Config) DelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Delay)
	return d
}

// Validate checks the log settings.
func (c *LogConfig) Validate() error {
	el := goerrors.NewErrorList()

	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		el.Add(fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Level))
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		el.Add(fmt.Errorf("log.format %q is not one of text, json", c.Format))
	}

	return el.Err()
}
