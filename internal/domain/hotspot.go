package domain

import (
	"fmt"

	"georisk/internal/stream"
)

// Hotspot is one clustered event location with a media mention count.
type Hotspot struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MentionCount int     `json:"mention_count"`
}

// HotspotDigest covers name and mention count.
func HotspotDigest(items []Hotspot) uint64 {
	lines := make([]string, 0, len(items))
	for _, h := range items {
		lines = append(lines, fmt.Sprintf("%s|%d", h.Name, h.MentionCount))
	}
	return stream.HashFields(lines)
}
