// Package config provides runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs for the line-protocol server and the ops
// HTTP endpoint.
type Config struct {
	ListenAddr string
	OpsAddr    string

	IdleTimeout time.Duration
	IdlePoll    time.Duration

	MetricsEnabled bool
	MetricsToken   string
	OpsRateLimit   int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from the environment with defaults.
func Load() Config {
	return Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8888"),
		OpsAddr:        getenv("OPS_ADDR", ":9090"),
		IdleTimeout:    durenvs("IDLE_TIMEOUT_SECONDS", 300),
		IdlePoll:       durenvs("IDLE_POLL_SECONDS", 10),
		MetricsEnabled: boolenv("METRICS_ENABLED", false),
		MetricsToken:   getenv("METRICS_TOKEN", ""),
		OpsRateLimit:   atoienv("OPS_RATE_LIMIT", 120),
	}
}
