// Package config provides runtime configuration values for the storefront.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, catalog, sessions and checkout handoff.
type Config struct {
	HTTPAddr             string
	ShutdownTimeout      time.Duration
	CatalogPath          string
	MessagingBaseURL     string
	StoreName            string
	Locale               string
	Currency             string
	SessionCookie        string
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
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

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:      durenvs("SHUTDOWN_TIMEOUT", 15),
		CatalogPath:          getenv("CATALOG_PATH", ""),
		MessagingBaseURL:     getenv("MESSAGING_BASE_URL", "https://wa.me"),
		StoreName:            getenv("STORE_NAME", "SB'Stilo"),
		Locale:               getenv("LOCALE", "pt-BR"),
		Currency:             getenv("CURRENCY", "BRL"),
		SessionCookie:        getenv("SESSION_COOKIE", "cart_session"),
		SessionIdleTimeout:   durenvs("SESSION_IDLE_TIMEOUT", 1800),
		SessionSweepInterval: durenvms("SESSION_SWEEP_INTERVAL_MS", 60000),
	}
}

// Contact returns the messaging contact as currently configured.
//
// It is read on every call so a checkout always sees the live value.
func Contact() string {
	return os.Getenv("WHATSAPP_NUMBER")
}
