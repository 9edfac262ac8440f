package layers

import (
	"time"

	"georisk/internal/domain"
	"georisk/internal/viewport"
)

// Pulse parameters for the animated layers.
var (
	RiskPulse    = PulseSpec{Period: 2 * time.Second, BaseOpacity: 0.65, Amplitude: 0.25}
	HotspotPulse = PulseSpec{Period: 3 * time.Second, BaseOpacity: 0.55, Amplitude: 0.35}
)

// RiskPrimitives renders one pulsing point per scored location; color and
// radius are deterministic functions of the score. Records without finite
// coordinates are skipped silently.
func RiskPrimitives(points []domain.RiskPoint) []viewport.Primitive {
	out := make([]viewport.Primitive, 0, len(points))
	for _, p := range points {
		if !domain.ValidCoordinate(p.Latitude, p.Longitude) {
			continue
		}
		out = append(out, viewport.Primitive{
			Kind:      viewport.PointPrimitive,
			Longitude: p.Longitude,
			Latitude:  p.Latitude,
			Appearance: viewport.Appearance{
				Fill:    RiskColor(p.RiskScore),
				Outline: RiskColor(p.RiskScore),
				Opacity: RiskPulse.BaseOpacity,
				Radius:  RiskRadius(p.RiskScore),
			},
			Record: p,
		})
	}
	return out
}

// HotspotPrimitives renders log-scaled pulsing markers for event clusters.
func HotspotPrimitives(items []domain.Hotspot) []viewport.Primitive {
	out := make([]viewport.Primitive, 0, len(items))
	for _, h := range items {
		if !domain.ValidCoordinate(h.Latitude, h.Longitude) {
			continue
		}
		out = append(out, viewport.Primitive{
			Kind:      viewport.PointPrimitive,
			Longitude: h.Longitude,
			Latitude:  h.Latitude,
			Appearance: viewport.Appearance{
				Fill:    "#ff5722",
				Outline: "#ff8a65",
				Opacity: HotspotPulse.BaseOpacity,
				Radius:  HotspotRadius(h.MentionCount),
			},
			Record: h,
		})
	}
	return out
}

// FacilityPrimitives renders static facility markers with labels.
func FacilityPrimitives(items []domain.Facility) []viewport.Primitive {
	out := make([]viewport.Primitive, 0, len(items))
	for _, f := range items {
		if !domain.ValidCoordinate(f.Latitude, f.Longitude) {
			continue
		}
		out = append(out, viewport.Primitive{
			Kind:      viewport.IconPrimitive,
			Longitude: f.Longitude,
			Latitude:  f.Latitude,
			Label:     f.Name,
			Appearance: viewport.Appearance{
				Fill:    "#3f51b5",
				Outline: "#ffffff",
				Opacity: 1,
				Radius:  10,
			},
			Record: f,
		})
	}
	return out
}

// TrackPrimitives renders one oriented icon per vehicle; heading drives the
// rotation angle.
func TrackPrimitives(items []domain.Track) []viewport.Primitive {
	out := make([]viewport.Primitive, 0, len(items))
	for _, t := range items {
		if !domain.ValidCoordinate(t.Latitude, t.Longitude) {
			continue
		}
		opacity := 1.0
		if t.OnGround {
			opacity = 0.4
		}
		out = append(out, viewport.Primitive{
			Kind:      viewport.IconPrimitive,
			Longitude: t.Longitude,
			Latitude:  t.Latitude,
			Label:     t.Callsign,
			Appearance: viewport.Appearance{
				Fill:     "#00bcd4",
				Outline:  "#006064",
				Opacity:  opacity,
				Radius:   9,
				Rotation: t.Heading,
			},
			Record: t,
		})
	}
	return out
}
