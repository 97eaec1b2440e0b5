package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultPort = 80

type Config struct {
	Port       int    `env:"PORT"`
	LegacyPort int    `env:"REACT_APP_PORT"`
	HTTPHost   string `env:"HTTP_HOST"`
	OpsAddr    string `env:"OPS_ADDR"`

	StaticDir        string `env:"STATIC_DIR" envDefault:"./static"`
	RouterSource     string `env:"ROUTER_SOURCE" envDefault:"./src/views/Application/Router.tsx"`
	EntryDocument    string `env:"ENTRY_DOCUMENT" envDefault:"/index.html"`
	NotFoundDocument string `env:"NOT_FOUND_DOCUMENT" envDefault:"/not-found.html"`
	MIMETypesFile    string `env:"MIME_TYPES_FILE"`
	Compress         bool   `env:"COMPRESS" envDefault:"true"`
	BuildConcurrency int    `env:"BUILD_CONCURRENCY" envDefault:"8"`

	RestartDelay    time.Duration `env:"RESTART_DELAY" envDefault:"1ms"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if p := c.port(); p < 0 || p > 65535 {
		return fmt.Errorf("port %d out of range", p)
	}
	if c.BuildConcurrency < 1 {
		return fmt.Errorf("BUILD_CONCURRENCY must be positive, got %d", c.BuildConcurrency)
	}
	if c.RestartDelay < 0 {
		return fmt.Errorf("RESTART_DELAY must not be negative, got %s", c.RestartDelay)
	}
	return nil
}

// HTTPAddr is the front door listen address. PORT wins over the legacy
// REACT_APP_PORT variable; with neither set the server binds port 80.
func (c Config) HTTPAddr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.port()))
}

func (c Config) port() int {
	switch {
	case c.Port != 0:
		return c.Port
	case c.LegacyPort != 0:
		return c.LegacyPort
	default:
		return defaultPort
	}
}
