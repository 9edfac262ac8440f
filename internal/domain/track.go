package domain

import (
	"fmt"

	"georisk/internal/stream"
)

// Track is one moving vehicle position, keyed by ICAO identifier.
type Track struct {
	ICAOID    string  `json:"icao_id"`
	Callsign  string  `json:"callsign"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Heading   float64 `json:"heading"`
	Altitude  float64 `json:"altitude"`
	Velocity  float64 `json:"velocity"`
	OnGround  bool    `json:"on_ground"`
}

// TrackDigest rounds positions to ~10 m so GPS jitter between polls does not
// fire change events while real movement does.
func TrackDigest(items []Track) uint64 {
	lines := make([]string, 0, len(items))
	for _, t := range items {
		lines = append(lines, fmt.Sprintf("%s|%.4f|%.4f", t.ICAOID, t.Latitude, t.Longitude))
	}
	return stream.HashFields(lines)
}
