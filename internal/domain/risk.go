package domain

import (
	"fmt"
	"time"

	"georisk/internal/stream"
)

// RiskPoint is one scored location. Identity within a snapshot is the
// (country, city) pair.
type RiskPoint struct {
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RiskScore float64   `json:"risk_score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RiskDigest fingerprints the fields that should trigger a change
// notification. UpdatedAt is volatile display metadata and is excluded so a
// re-score to the same value stays silent.
func RiskDigest(points []RiskPoint) uint64 {
	lines := make([]string, 0, len(points))
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%s|%s|%.2f", p.Country, p.City, p.RiskScore))
	}
	return stream.HashFields(lines)
}
