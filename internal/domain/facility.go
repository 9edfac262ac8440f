package domain

import (
	"fmt"

	"georisk/internal/stream"
)

// Facility is a static marker: an embassy, office or port of interest.
type Facility struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FacilityDigest covers identity and placement; facilities rarely change but
// an upstream correction should still notify.
func FacilityDigest(items []Facility) uint64 {
	lines := make([]string, 0, len(items))
	for _, f := range items {
		lines = append(lines, fmt.Sprintf("%s|%s|%.5f|%.5f", f.ID, f.Category, f.Latitude, f.Longitude))
	}
	return stream.HashFields(lines)
}
