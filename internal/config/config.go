// Package config loads lingodeck settings from defaults, an optional YAML
// file, LINGODECK_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/abhisek/lingodeck/internal/llm"
	"github.com/abhisek/lingodeck/internal/rating"
)

// Config is the full application configuration.
type Config struct {
	// DB is the SQLite database path. Empty means the XDG default.
	DB string `koanf:"db"`

	Log    LogConfig    `koanf:"log"`
	Rating RatingConfig `koanf:"rating"`
	Deck   DeckConfig   `koanf:"deck"`
	LLM    llm.Config   `koanf:"llm"`

	// MetricsTextfile, when set, receives Prometheus metrics after each
	// command in node-exporter textfile format.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

type LogConfig struct {
	Mode  string `koanf:"mode" validate:"oneof=dev prod"`
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	// HashSalt keys the hashing of user and session ids in log output.
	HashSalt string `koanf:"hash_salt"`
}

// RatingConfig selects the rating engine strategies.
type RatingConfig struct {
	Streak  string `koanf:"streak" validate:"oneof=flat progressive"`
	Recency string `koanf:"recency" validate:"oneof=daily granular"`
	Bounds  string `koanf:"bounds" validate:"oneof=linear quadratic exponential"`
}

type DeckConfig struct {
	SeedAmount     int    `koanf:"seed_amount" validate:"gte=1,lte=50"`
	NativeLanguage string `koanf:"native_language" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Mode: "prod", Level: "warn"},
		Rating: RatingConfig{Streak: "flat", Recency: "daily", Bounds: "linear"},
		Deck:   DeckConfig{SeedAmount: 5, NativeLanguage: "en"},
		LLM:    llm.DefaultConfig(),
	}
}

// Engine builds the rating engine selected by c.
func (c Config) Engine() (rating.Engine, error) {
	return rating.ParseEngine(c.Rating.Streak, c.Rating.Recency, c.Rating.Bounds)
}

// envKeys maps supported environment variables to config keys.
var envKeys = map[string]string{
	"LINGODECK_DB":               "db",
	"LINGODECK_LOG_MODE":         "log.mode",
	"LINGODECK_LOG_LEVEL":        "log.level",
	"LINGODECK_LOG_HASH_SALT":    "log.hash_salt",
	"LINGODECK_STREAK_CURVE":     "rating.streak",
	"LINGODECK_RECENCY_MODE":     "rating.recency",
	"LINGODECK_BOUNDS_DAMPENING": "rating.bounds",
	"LINGODECK_SEED_AMOUNT":      "deck.seed_amount",
	"LINGODECK_NATIVE_LANGUAGE":  "deck.native_language",
	"LINGODECK_METRICS_TEXTFILE": "metrics_textfile",

	"LINGODECK_LLM_PROVIDER":       "llm.provider",
	"LINGODECK_LLM_TIMEOUT":        "llm.timeout",
	"LINGODECK_ANTHROPIC_API_KEY":  "llm.anthropic.api_key",
	"LINGODECK_ANTHROPIC_MODEL":    "llm.anthropic.model",
	"LINGODECK_OPENAI_API_KEY":     "llm.openai.api_key",
	"LINGODECK_OPENAI_MODEL":       "llm.openai.model",
	"LINGODECK_OPENAI_BASE_URL":    "llm.openai.base_url",
	"LINGODECK_GEMINI_API_KEY":     "llm.gemini.api_key",
	"LINGODECK_GEMINI_MODEL":       "llm.gemini.model",
	"LINGODECK_OPENROUTER_API_KEY": "llm.openrouter.api_key",
	"LINGODECK_OPENROUTER_MODEL":   "llm.openrouter.model",
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"db":               "db",
	"log-mode":         "log.mode",
	"log-level":        "log.level",
	"streak":           "rating.streak",
	"recency":          "rating.recency",
	"bounds":           "rating.bounds",
	"llm-provider":     "llm.provider",
	"metrics-textfile": "metrics_textfile",
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file; it must exist. When empty,
	// DefaultPath is used if present.
	File string
	// Flags are applied last; only flags set on the command line count.
	Flags *pflag.FlagSet
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load assembles and validates the configuration.
func Load(opts Options) (*Config, error) {
	ko := koanf.New(".")

	path := opts.File
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := ko.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Blank variables are skipped so they cannot erase defaults.
	if err := ko.Load(env.ProviderWithValue("LINGODECK_", ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil {
		fs := opts.Flags
		if err := ko.Load(posflag.ProviderWithFlag(fs, ".", ko, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := ko.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Discover()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Engine(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/lingodeck/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("cannot determine home directory")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lingodeck", "config.yaml"), nil
}
