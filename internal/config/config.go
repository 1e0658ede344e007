// Package config holds settings of the htable command.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bdragon300/doublehash/doublehash"
)

// ErrInvalidConfig is returned when a config holds unknown keys or values out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the htable command configuration.
type Config struct {
	Table TableConfig `toml:"table"`
	Log   LogConfig   `toml:"log"`
}

// TableConfig holds parameters of the hash table created for a session.
type TableConfig struct {
	BaseCapacity int `toml:"base-capacity"`
}

// LogConfig describes the log sink. Empty Filename means stderr, otherwise the file is rotated
// after MaxSize megabytes.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // console or json
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max-size"`
	MaxBackups int    `toml:"max-backups"`
	MaxDays    int    `toml:"max-days"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Table: TableConfig{BaseCapacity: doublehash.DefaultBaseCapacity},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			MaxSize: 64,
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every value is within its allowed range.
func (c Config) Validate() error {
	if c.Table.BaseCapacity < 2 || c.Table.BaseCapacity > doublehash.MaxBaseCapacity {
		return fmt.Errorf("%w: table.base-capacity must be in range [2, %d], got %d",
			ErrInvalidConfig, doublehash.MaxBaseCapacity, c.Table.BaseCapacity)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unsupported log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unsupported log format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxDays < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
