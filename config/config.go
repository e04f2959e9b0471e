// Package config reads process configuration from environment variables once
// at startup. Missing upstream credentials degrade the affected feature
// rather than failing the process.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort         = "8400"
	defaultCatalogURL   = "https://api.themoviedb.org/3"
	defaultSportsURL    = "https://streamed.su/api"
	defaultLanguage     = "en"
	defaultCacheTTLMins = 5
	defaultDataDir      = "./data"
)

// Config holds all runtime settings. It is constructed once in main and
// passed by reference; no package-level mutable state.
type Config struct {
	Port string

	CatalogBaseURL string
	CatalogAPIKey  string
	Language       string

	SportsBaseURL string

	GeminiAPIKey string

	CacheTTL time.Duration
	DataDir  string
}

// FromEnv builds a Config from the environment, applying defaults for
// anything unset.
func FromEnv() Config {
	cfg := Config{
		Port:           envOr("STREAMVERSE_PORT", defaultPort),
		CatalogBaseURL: envOr("CATALOG_API_URL", defaultCatalogURL),
		CatalogAPIKey:  os.Getenv("CATALOG_API_KEY"),
		Language:       envOr("CATALOG_LANGUAGE", defaultLanguage),
		SportsBaseURL:  envOr("SPORTS_API_URL", defaultSportsURL),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		CacheTTL:       time.Duration(envIntOr("CACHE_TTL_MINUTES", defaultCacheTTLMins)) * time.Minute,
		DataDir:        envOr("DATA_DIR", defaultDataDir),
	}

	if cfg.CatalogAPIKey == "" {
		log.Printf("[config] CATALOG_API_KEY not set, catalog queries will fail upstream")
	}
	if cfg.GeminiAPIKey == "" {
		log.Printf("[config] GEMINI_API_KEY not set, assistant will use canned replies")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
