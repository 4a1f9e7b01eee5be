package main

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Items           int
	Concurrency     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("FLOWPIPE_CONFIG", ""),
		"Path to YAML configuration file (env: FLOWPIPE_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("FLOWPIPE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: FLOWPIPE_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("FLOWPIPE_LOG_FORMAT", "text"),
		"Log format: json, text (env: FLOWPIPE_LOG_FORMAT)")

	flag.IntVar(&cfg.Items, "items",
		getEnvInt("FLOWPIPE_ITEMS", 100),
		"Number of items the provider emits (env: FLOWPIPE_ITEMS)")

	flag.IntVar(&cfg.Concurrency, "concurrency",
		getEnvInt("FLOWPIPE_CONCURRENCY", 4),
		"Executor pool size of the transform worker (env: FLOWPIPE_CONCURRENCY)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("FLOWPIPE_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: FLOWPIPE_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
