// Package config loads flipdeck settings from defaults, a YAML file,
// FLIPDECK_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // review.timezone must resolve without system zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "FLIPDECK_"

// Config holds all application configuration.
type Config struct {
	DB       string    `koanf:"db" validate:"required"`
	ReposDir string    `koanf:"repos_dir" validate:"required"`
	Log      LogConfig `koanf:"log"`
	Review   Review    `koanf:"review"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

// Review holds review session defaults.
type Review struct {
	// Timezone is an IANA name used for calendar-day boundaries; "Local"
	// means the system zone.
	Timezone   string `koanf:"timezone" validate:"required,timezone"`
	SampleSize int    `koanf:"sample_size" validate:"min=1"`
	Swap       bool   `koanf:"swap"`
}

// RegisterFlags adds the global flags, with their defaults, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("db", "flipdeck.db", "Path to the SQLite database file")
	fs.String("repos_dir", "repos", "Directory git sources are cloned into")
	fs.String("log.level", "info", "Log level: debug, info, warn, error")
	fs.String("log.format", "text", "Log format: text or json")
	fs.String("review.timezone", "Local", "Time zone for calendar-day scheduling")
	fs.Int("review.sample_size", 25, "Cards picked by --random when no count is given")
	fs.Bool("review.swap", false, "Show the back of each card as the prompt")
}

// Load builds a Config from the layers and validates it. fs must have
// been set up with RegisterFlags and already parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// FLIPDECK_LOG__LEVEL -> log.level; single underscores stay.
	err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// Changed flags override everything; untouched flags only fill gaps.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves Review.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Review.Timezone == "" || c.Review.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Review.Timezone)
}

// Logger builds the slog logger described by Log.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if c.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
