package server

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/NVIDIA/rgvalidator/pkg/defaults"
	"github.com/NVIDIA/rgvalidator/pkg/logging"
)

const (
	// EnvPort is the generic listen port variable.
	EnvPort = "PORT"

	// EnvFunctionsPort is set by the Azure Functions host for custom handlers.
	// It takes precedence over EnvPort.
	EnvFunctionsPort = "FUNCTIONS_CUSTOMHANDLER_PORT"

	defaultPort = 8080
)

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         "",
		Port:            defaultPort,
		RateLimit:       defaults.ServerRateLimit,
		RateLimitBurst:  defaults.ServerRateLimitBurst,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		LogLevel:        slog.LevelInfo.String(),
	}

	// Override with environment variables if set
	for _, key := range []string{EnvFunctionsPort, EnvPort} {
		if port, ok := portFromEnv(key); ok {
			cfg.Port = port
			break
		}
	}

	if logLevelStr := os.Getenv(logging.EnvLogLevel); logLevelStr != "" {
		cfg.LogLevel = logLevelStr
	}

	return cfg
}

func portFromEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	port, err := strconv.Atoi(v)
	if err != nil || port < 0 || port > 65535 {
		slog.Warn("ignoring invalid port", "env", key, "value", v)
		return 0, false
	}
	return port, true
}

func (c *Config) listenAddress() string {
	return c.Address + ":" + strconv.Itoa(c.Port)
}
