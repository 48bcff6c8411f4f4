package appconf

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of a stopgraph run. Values come from an
// optional YAML file and are then overridden by command line flags.
type Config struct {
	DatasetPath string `yaml:"dataset_path" validate:"required"`
	RowLimit    int    `yaml:"row_limit" validate:"gte=0"`
	Workers     int    `yaml:"workers" validate:"gte=0,lte=256"`
	ImportDB    string `yaml:"import_db"`
	Env         string `yaml:"env" validate:"omitempty,oneof=development test production"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Server      Server `yaml:"server"`
}

type Server struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"gte=0,lte=65535"`
	// RateLimit is requests per second per client; 0 disables limiting
	RateLimit int `yaml:"rate_limit" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Env:      Development.String(),
		LogLevel: "info",
		Server: Server{
			Port: 4000,
		},
	}
}

// Load reads a YAML config file on top of the defaults. It does not validate;
// call Validate once flags have been applied.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from STOPGRAPH_* environment variables that are
// set. Unparsable numbers are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("STOPGRAPH_DATASET"); ok {
		c.DatasetPath = v
	}
	if v, ok := os.LookupEnv("STOPGRAPH_ENV"); ok {
		c.Env = v
	}
	if v, ok := os.LookupEnv("STOPGRAPH_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	for name, dst := range map[string]*int{
		"STOPGRAPH_ROW_LIMIT":  &c.RowLimit,
		"STOPGRAPH_WORKERS":    &c.Workers,
		"STOPGRAPH_PORT":       &c.Server.Port,
		"STOPGRAPH_RATE_LIMIT": &c.Server.RateLimit,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks the final configuration.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c Config) Environment() Environment {
	return EnvFlagToEnvironment(c.Env)
}

// SlogLevel converts LogLevel into a slog.Level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
