package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            int           `env:"PORT" envDefault:"8000"`
	Host            string        `env:"HOST"`
	RootDir         string        `env:"ROOT_DIR" envDefault:"."`
	StaticPrefix    string        `env:"STATIC_PREFIX" envDefault:"/static"`
	IndexFile       string        `env:"INDEX_FILE" envDefault:"index.html"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	HealthPath      string        `env:"HEALTH_PATH"`
	MetricsPath     string        `env:"METRICS_PATH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr is the listen address; an empty host binds all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set in the environment win over .env.
// RootDir is resolved to an absolute path.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 0 and 65535", c.Port)
	}

	abs, err := filepath.Abs(c.RootDir)
	if err != nil {
		return fmt.Errorf("resolving ROOT_DIR %q: %w", c.RootDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("checking ROOT_DIR: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("ROOT_DIR %s is not a directory", abs)
	}
	c.RootDir = abs

	if !strings.HasPrefix(c.StaticPrefix, "/") {
		return fmt.Errorf("invalid STATIC_PREFIX %q: must start with /", c.StaticPrefix)
	}
	if c.IndexFile == "" || strings.ContainsAny(c.IndexFile, `/\`) {
		return fmt.Errorf("invalid INDEX_FILE %q: must be a plain file name", c.IndexFile)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want text or json", c.LogFormat)
	}

	for name, p := range map[string]string{"HEALTH_PATH": c.HealthPath, "METRICS_PATH": c.MetricsPath} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid %s %q: must start with /", name, p)
		}
	}
	return nil
}
