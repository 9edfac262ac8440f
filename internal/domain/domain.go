package domain

import "math"

// Kind identifies one dataset and its corresponding map layer.
type Kind string

const (
	KindRisk     Kind = "risk"
	KindAdvisory Kind = "advisory"
	KindHotspot  Kind = "hotspot"
	KindPrice    Kind = "price"
	KindFacility Kind = "facility"
	KindTrack    Kind = "track"
)

// ValidCoordinate reports whether a lat/lon pair can be placed on the map.
// Records that fail this check are silently skipped during layer rebuilds.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
