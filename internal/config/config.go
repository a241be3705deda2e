// Package config loads tierforge's runtime configuration from a YAML or
// JSON file, TIERFORGE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rogers-f/tierforge/internal/domain"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "TIERFORGE"

// Config holds tierforge's runtime configuration.
type Config struct {
	DBPath                  string `mapstructure:"db_path"`
	CatalogPath             string `mapstructure:"catalog_path"`
	ProvisionTemplate       string `mapstructure:"provision_template"`
	StrictRegistration      bool   `mapstructure:"strict_registration"`
	RedisURL                string `mapstructure:"redis_url"`
	RedisStream             string `mapstructure:"redis_stream"`
	LeaderboardDefaultLimit int    `mapstructure:"leaderboard_default_limit"`
	LogLevel                string `mapstructure:"log_level"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":      "db_path",
	"catalog": "catalog_path",
	"redis":   "redis_url",
}

// Load reads the config file at path (skipped when empty), layers
// environment variables and changed flags on top, applies defaults, and
// validates. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Discover returns the first config.yaml or config.json found next to the
// executable or in the working directory, or "" if there is none.
func Discover() string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.json"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal even when the file omits them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("provision_template", "")
	v.SetDefault("strict_registration", false)
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_stream", "tierforge.transitions")
	v.SetDefault("leaderboard_default_limit", 10)
	v.SetDefault("log_level", "info")
}

func (c *Config) applyDefaults() {
	if c.RedisStream == "" {
		c.RedisStream = "tierforge.transitions"
	}
	if c.LeaderboardDefaultLimit == 0 {
		c.LeaderboardDefaultLimit = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

func (c *Config) validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.LeaderboardDefaultLimit < 0 {
		problems = append(problems, "leaderboard_default_limit must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.CatalogPath != "" {
		if _, err := os.Stat(c.CatalogPath); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("catalog_path %s does not exist", c.CatalogPath))
		}
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}
