package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures process-level configuration. All values are read once at
// startup; components receive what they need through constructors.
type Config struct {
	Addr string

	// Base URLs of the two upstream services.
	RiskAPIBase  string
	AgentAPIBase string

	// One-time world boundaries document used by the choropleth resolver.
	BoundariesURL string

	// Access token handed to the map provider when a real rendering surface
	// is wired in. Unused by the memory surface.
	MapToken string

	RedisURL string

	// Facility codes requested from the upstream at startup.
	FacilityCodes []string

	PollInterval   time.Duration
	ReconnectDelay time.Duration
}

const (
	defaultPollInterval   = 15 * time.Second
	defaultReconnectDelay = 2 * time.Second
	defaultBoundariesURL  = "https://raw.githubusercontent.com/datasets/geo-countries/master/data/countries.geojson"
)

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:           envOr("GEORISK_ADDR", ":8090"),
		RiskAPIBase:    envOr("RISK_API_BASE", "http://localhost:8000"),
		AgentAPIBase:   envOr("AGENT_API_BASE", "http://localhost:8001"),
		BoundariesURL:  envOr("BOUNDARIES_URL", defaultBoundariesURL),
		MapToken:       os.Getenv("MAP_ACCESS_TOKEN"),
		RedisURL:       os.Getenv("REDIS_URL"),
		PollInterval:   defaultPollInterval,
		ReconnectDelay: defaultReconnectDelay,
	}

	if raw := os.Getenv("FACILITY_CODES"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				cfg.FacilityCodes = append(cfg.FacilityCodes, code)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
