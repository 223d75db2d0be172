package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr            string
	DatabaseURL     string
	RulesPath       string
	Seed            *int64
	ShutdownTimeout time.Duration
	LogLevel        string
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MGSIM_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RulesPath:       strings.TrimSpace(os.Getenv("MGSIM_RULES_PATH")),
		ShutdownTimeout: envDurationDefault("MGSIM_SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        envLogLevelDefault(),
	}
	if v := strings.TrimSpace(os.Getenv("MGSIM_SEED")); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("MGSIM_SEED must be an integer: %w", err)
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("MG_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envLogLevelDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MGSIM_LOG_LEVEL")))
	switch v {
	case "debug", "info", "warn", "error":
		return v
	default:
		return "info"
	}
}
