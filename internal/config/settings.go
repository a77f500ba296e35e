package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Settings struct {
	Port             string
	FeedbackStore    string
	OverrideCacheTTL time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
}

// LoadSettings reads the service settings from the environment. Unset or
// unparsable values fall back to defaults.
func LoadSettings() Settings {
	s := Settings{
		Port:             os.Getenv("APP_PORT"),
		FeedbackStore:    strings.ToLower(strings.TrimSpace(os.Getenv("FEEDBACK_STORE"))),
		OverrideCacheTTL: 24 * time.Hour,
		RateLimitRPS:     50,
		RateLimitBurst:   100,
	}
	if s.Port == "" {
		s.Port = "3000"
	}
	if s.FeedbackStore != StoreMemory {
		s.FeedbackStore = StorePostgres
	}
	if ttl, err := time.ParseDuration(os.Getenv("OVERRIDE_CACHE_TTL")); err == nil && ttl >= 0 {
		s.OverrideCacheTTL = ttl
	}
	if rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil && rps > 0 {
		s.RateLimitRPS = rps
	}
	if burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil && burst > 0 {
		s.RateLimitBurst = burst
	}
	return s
}
