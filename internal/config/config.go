// Package config loads fractalreg settings from flags, environment and a
// YAML config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FRACTALREG_DB.
const EnvPrefix = "fractalreg"

// ConfigPathEnv names a config file to read when --config is not given.
const ConfigPathEnv = "FRACTALREG_CONFIG_PATH"

// DefaultConfigFile is read from the working directory if present.
const DefaultConfigFile = "fractalreg.yaml"

// Keys shared by flags, env and config file.
const (
	KeyDB        = "db"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
	KeyFormat    = "format"
	KeyEvents    = "events"
	KeyCaller    = "caller"
	KeyNow       = "now"
	KeyVerbose   = "verbose"
)

// Event sinks.
const (
	EventsStderr = "stderr"
	EventsStdout = "stdout"
	EventsLog    = "log"
	EventsNone   = "none"
)

// Config is the resolved configuration for one command run.
type Config struct {
	DB        string `mapstructure:"db" validate:"required"`
	LogLevel  string `mapstructure:"log-level" validate:"required"`
	LogFormat string `mapstructure:"log-format" validate:"oneof=json console"`
	Format    string `mapstructure:"format" validate:"oneof=text json"`
	Events    string `mapstructure:"events" validate:"oneof=stderr stdout log none"`
	Caller    string `mapstructure:"caller"`
	// Now fixes the time reference in Unix nanoseconds; 0 reads the system clock.
	Now     uint64 `mapstructure:"now"`
	Verbose bool   `mapstructure:"verbose"`
}

var validate = validator.New()

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(KeyDB, "fractalreg.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyEvents, EventsStderr)
	v.SetDefault(KeyCaller, "")
	v.SetDefault(KeyNow, uint64(0))
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes every flag in fs a config source for its key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr := v.BindPFlag(f.Name, f); bindErr != nil {
			err = errors.Join(err, bindErr)
		}
	})
	return err
}

// ReadFile reads path, or the file named by FRACTALREG_CONFIG_PATH, or
// ./fractalreg.yaml. An explicitly named file must exist; the default may not.
func ReadFile(v *viper.Viper, path string) error {
	explicit := true
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path == "" {
		path, explicit = DefaultConfigFile, false
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
