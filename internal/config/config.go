package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string // API bind address, e.g. ":5000"
	LogDir      string // logs directory
	DatabaseURL string // postgres DSN for the result archive; empty disables archiving

	Workers         int           // max concurrently in-flight probes
	JitterFrac      float64       // fraction of the interval added as random offset
	HistoryCapacity int           // per-target ring size
	DefaultInterval time.Duration // used by the API when a request omits interval

	SlackWebhook    string
	AlertOnRecovery bool
	AlertCooldown   time.Duration

	PublicAPIKeys []string
	AdminAPIKeys  []string
	RateRPM       int // requests per minute per client IP; 0 disables
	RateBurst     int
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":5000"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		Addr:        addr,
		LogDir:      logDir,
		DatabaseURL: os.Getenv("DATABASE_URL"),

		Workers:         envInt("PROBE_WORKERS", 16),
		JitterFrac:      envFloat("PROBE_JITTER_FRAC", 0.2),
		HistoryCapacity: envInt("HISTORY_CAPACITY", 100),
		DefaultInterval: envDurationMS("DEFAULT_INTERVAL_MS", 30*time.Second),

		SlackWebhook:    os.Getenv("SLACK_WEBHOOK"),
		AlertOnRecovery: envBool("ALERT_ON_RECOVERY", true),
		AlertCooldown:   envDurationMS("ALERT_COOLDOWN_MS", 5*time.Minute),

		PublicAPIKeys: splitKeys(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitKeys(os.Getenv("ADMIN_API_KEYS")),
		RateRPM:       envInt("RATE_RPM", 0),
		RateBurst:     envInt("RATE_BURST", 30),
	}
}

func splitKeys(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func envBool(name string, def bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationMS(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}
