// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. KANAKK_LOG_LEVEL.
const EnvPrefix = "KANAKK"

// MinSecretKeyLength is the shortest accepted session signing key.
const MinSecretKeyLength = 16

const devSecretKey = "kanakk-development-only-secret"

var ErrInvalidConfig = errors.New("invalid config")

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Port         string        `mapstructure:"port"`
	DatabaseURL  string        `mapstructure:"database_url"`
	SecretKey    string        `mapstructure:"secret_key"`
	Dev          bool          `mapstructure:"dev"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
	LogLevel     string        `mapstructure:"log_level"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Default values, overridable by file or environment.
var defaults = map[string]any{
	"addr":          "",
	"port":          "8080",
	"database_url":  "sqlite:kanakk.db",
	"secret_key":    "",
	"dev":           false,
	"session_ttl":   24 * time.Hour,
	"cookie_secure": false,
	"bcrypt_cost":   10,
	"log_level":     "info",
	"read_timeout":  10 * time.Second,
	"write_timeout": 30 * time.Second,
}

// Load reads configuration. A non-empty path must name a readable config
// file; with an empty path, config.yaml in the working directory is used
// when present. Variables in ./.env are loaded into the environment first
// without overriding variables that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bare names used by common hosting platforms.
	for key, env := range map[string]string{"database_url": "DATABASE_URL", "secret_key": "SECRET_KEY", "port": "PORT"} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if c.Addr == "" {
		c.Addr = ":" + c.Port
	}
	if c.SecretKey == "" && c.Dev {
		c.SecretKey = devSecretKey
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required", ErrInvalidConfig)
	case c.SecretKey == "":
		return fmt.Errorf("%w: secret_key is required (set SECRET_KEY, or KANAKK_DEV=true for local use)", ErrInvalidConfig)
	case len(c.SecretKey) < MinSecretKeyLength:
		return fmt.Errorf("%w: secret_key must be at least %d bytes", ErrInvalidConfig, MinSecretKeyLength)
	case c.SessionTTL <= 0:
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	case c.BcryptCost < 4 || c.BcryptCost > 31:
		return fmt.Errorf("%w: bcrypt_cost must be between 4 and 31", ErrInvalidConfig)
	}
	return nil
}

// InsecureSecret reports whether the built-in development key is in use.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == devSecretKey
}
