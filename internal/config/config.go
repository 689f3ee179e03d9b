// Package config loads cpusched settings from defaults, an optional YAML
// file, CPUSCHED_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyQuantum      = "quantum"
	KeyMaxProcesses = "max_processes"
	KeyPort         = "port"
	KeyLogLevel     = "log.level"
	KeyRecordPath   = "record.path"
	KeyFormat       = "format"
)

const envPrefix = "CPUSCHED"

var ErrInvalid = errors.New("invalid configuration")

// Formats lists the accepted report formats.
var Formats = []string{"summary", "table", "json"}

type Config struct {
	Quantum      int64
	MaxProcesses int
	Port         int
	LogLevel     string
	RecordPath   string
	Format       string
}

// New returns a viper instance carrying the defaults and the environment
// binding. Flags may be bound to it before Load is called.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyQuantum, 100)
	v.SetDefault(KeyMaxProcesses, 25)
	v.SetDefault(KeyPort, 9095)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRecordPath, "")
	v.SetDefault(KeyFormat, "summary")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An explicit file must exist; without one a
// config.yaml in the working directory is used when present.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config: %v", ErrInvalid, err)
		}
	}

	cfg := &Config{
		Quantum:      v.GetInt64(KeyQuantum),
		MaxProcesses: v.GetInt(KeyMaxProcesses),
		Port:         v.GetInt(KeyPort),
		LogLevel:     v.GetString(KeyLogLevel),
		RecordPath:   v.GetString(KeyRecordPath),
		Format:       strings.ToLower(v.GetString(KeyFormat)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Quantum <= 0:
		return fmt.Errorf("%w: quantum must be positive, got %d", ErrInvalid, c.Quantum)
	case c.MaxProcesses <= 0:
		return fmt.Errorf("%w: max_processes must be positive, got %d", ErrInvalid, c.MaxProcesses)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port out of range: %d", ErrInvalid, c.Port)
	}
	for _, f := range Formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown format %q", ErrInvalid, c.Format)
}

// Addr is the listen address for the HTTP API.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
