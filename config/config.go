// Package config loads the connection and logging settings.
//
// Settings come from environment variables prefixed with CIRCULATION_,
// optionally read from a .env file in the working directory first.
// Any setting that is not provided keeps the default from Default().
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/madkins23/go-circulation/circulation"
	"github.com/madkins23/go-circulation/mdb"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "CIRCULATION_"

// Config holds all settings for the circulation command.
type Config struct {
	URI            string        `koanf:"uri" validate:"required,startswith=mongodb"`
	Database       string        `koanf:"database" validate:"required"`
	Collection     string        `koanf:"collection" validate:"required"`
	LogLevel       string        `koanf:"log_level" validate:"required,oneof=trace debug info warn error"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		URI:            mdb.DefaultURI,
		Database:       circulation.DefaultDatabase,
		Collection:     circulation.DefaultCollection,
		LogLevel:       zerolog.LevelInfoValue,
		ConnectTimeout: mdb.DefaultConnectTimeout,
	}
}

// Load reads the .env file, if any, and the environment over the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	return LoadFrom(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}))
}

// LoadFrom reads the specified provider over the defaults and validates the result.
func LoadFrom(provider koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Logger returns a console logger writing to stderr at the configured level.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

// Access returns the mdb connection configuration.
func (c *Config) Access(logger *zerolog.Logger) *mdb.Config {
	return &mdb.Config{
		Options: options.Client().ApplyURI(c.URI),
		Logger:  logger,
		Timeout: mdb.Timeout{
			Connect: c.ConnectTimeout,
			Request: c.RequestTimeout,
		},
	}
}

// Repository returns the configuration for a circulation.Repository.
func (c *Config) Repository(logger *zerolog.Logger) circulation.Config {
	return circulation.Config{
		Database:   c.Database,
		Collection: c.Collection,
		Access:     c.Access(logger),
	}
}
