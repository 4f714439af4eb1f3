package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds everything the service needs to run.
type Config struct {
	ListenAddr      string   `hcl:"listen_addr,optional" env:"LISTEN_ADDR"`
	SocketPath      string   `hcl:"socket_path,optional" env:"SOCKET_PATH"`
	Transports      []string `hcl:"transports,optional" env:"TRANSPORTS" envSeparator:","`
	CorsOrigins     []string `hcl:"cors_origins,optional" env:"CORS_ORIGINS" envSeparator:","`
	PingInterval    string   `hcl:"ping_interval,optional" env:"PING_INTERVAL"`
	PingTimeout     string   `hcl:"ping_timeout,optional" env:"PING_TIMEOUT"`
	ShutdownTimeout string   `hcl:"shutdown_timeout,optional" env:"SHUTDOWN_TIMEOUT"`
	Healthcheck     bool     `hcl:"healthcheck,optional" env:"HEALTHCHECK"`
	LogLevel        string   `hcl:"log_level,optional" env:"LOG_LEVEL"`
	LogFormat       string   `hcl:"log_format,optional" env:"LOG_FORMAT"`
}

// Defaults returns the configuration used when no source overrides a value.
func Defaults() *Config {
	return &Config{
		ListenAddr:      ":3000",
		SocketPath:      "/socket.io/",
		Transports:      []string{"polling", "websocket"},
		PingInterval:    "25s",
		PingTimeout:     "20s",
		ShutdownTimeout: "5s",
		Healthcheck:     true,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.ListenAddr == "" {
		errs = append(errs, "listen_addr cannot be empty")
	}
	if !strings.HasPrefix(c.SocketPath, "/") {
		errs = append(errs, fmt.Sprintf("socket_path '%s' must start with '/'", c.SocketPath))
	}
	for _, tr := range c.Transports {
		switch tr {
		case "polling", "websocket", "webtransport":
		default:
			errs = append(errs, fmt.Sprintf("unknown transport '%s'", tr))
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log_level must be 'debug', 'info', 'warn', or 'error'")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, "log_format must be 'text' or 'json'")
	}
	for name, v := range map[string]string{
		"ping_interval":    c.PingInterval,
		"ping_timeout":     c.PingTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid configuration:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// PingIntervalDuration returns the parsed ping interval, zero when unset.
func (c *Config) PingIntervalDuration() time.Duration {
	d, _ := parseDuration(c.PingInterval)
	return d
}

// PingTimeoutDuration returns the parsed ping timeout, zero when unset.
func (c *Config) PingTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.PingTimeout)
	return d
}

// ShutdownTimeoutDuration returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.ShutdownTimeout)
	return d
}

func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration '%s' cannot be negative", v)
	}
	return d, nil
}
