package layers

import "georisk/internal/domain"

// Preset is a bulk visibility assignment applied when the active view
// changes. Layers missing from a preset keep their current state.
type Preset map[string]bool

// RiskView shows the geopolitical overlays and hides market data.
var RiskView = Preset{
	string(domain.KindRisk):     true,
	string(domain.KindAdvisory): true,
	string(domain.KindHotspot):  true,
	string(domain.KindFacility): true,
	string(domain.KindTrack):    false,
	string(domain.KindPrice):    false,
}

// MarketView keeps the map sparse and brings up the price panel.
var MarketView = Preset{
	string(domain.KindRisk):     false,
	string(domain.KindAdvisory): false,
	string(domain.KindHotspot):  false,
	string(domain.KindFacility): true,
	string(domain.KindTrack):    true,
	string(domain.KindPrice):    true,
}

// ApplyPreset flips every layer named by the preset to its preset state.
func (r *Registry) ApplyPreset(p Preset) {
	for id, enabled := range p {
		r.SetEnabled(id, enabled)
	}
}
