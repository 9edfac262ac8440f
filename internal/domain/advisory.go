package domain

import (
	"fmt"

	"georisk/internal/stream"
)

// Advisory is one country's travel advisory level. Level is nil when the
// upstream could not resolve the country; such records still render, with
// the neutral "no data" fill.
type Advisory struct {
	Country     string `json:"country"`
	RegionCode  string `json:"region_code"`
	Level       *int   `json:"level"`
	Err         string `json:"error"`
	RetrievedAt string `json:"retrieved_at"`
}

// AdvisoryDigest covers region code and level only; retrieval timestamps and
// error strings churn on every poll and must not fire change events.
func AdvisoryDigest(items []Advisory) uint64 {
	lines := make([]string, 0, len(items))
	for _, a := range items {
		level := -1
		if a.Level != nil {
			level = *a.Level
		}
		lines = append(lines, fmt.Sprintf("%s|%d", a.RegionCode, level))
	}
	return stream.HashFields(lines)
}
