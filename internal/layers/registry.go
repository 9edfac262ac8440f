// Package layers binds domain snapshots to persistent graphic layers on a
// viewport and owns the process-wide layer visibility state.
package layers

import (
	"slices"
	"sync"

	"georisk/internal/domain"
)

// Entry is one toggleable layer: identity, display label, and whether it is
// currently enabled. Lifetime is process lifetime.
type Entry struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Registry is the process-wide layer visibility state. It is a pure state
// container: stores read it to gate background fetches, bindings read it to
// gate rendering, and view routing mutates it in bulk through presets.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	entries  map[string]*Entry
	onChange []func(id string, enabled bool)
}

// DefaultEntries lists every dashboard layer with its risk-view defaults.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: string(domain.KindRisk), Label: "Risk heatmap", Enabled: true},
		{ID: string(domain.KindAdvisory), Label: "Travel advisories", Enabled: true},
		{ID: string(domain.KindHotspot), Label: "Event hotspots", Enabled: true},
		{ID: string(domain.KindFacility), Label: "Facilities", Enabled: true},
		{ID: string(domain.KindTrack), Label: "Flight tracks", Enabled: false},
		{ID: string(domain.KindPrice), Label: "Market prices", Enabled: false},
	}
}

// NewRegistry builds a registry from ordered entries.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		copied := e
		r.order = append(r.order, e.ID)
		r.entries[e.ID] = &copied
	}
	return r
}

// Layers returns a copy of all entries in registration order.
func (r *Registry) Layers() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Enabled reports whether the layer with the given id is enabled. Unknown
// ids are disabled.
func (r *Registry) Enabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return ok && e.Enabled
}

// Toggle flips one layer and returns its new state. Unknown ids are ignored
// and report ok=false.
func (r *Registry) Toggle(id string) (enabled, ok bool) {
	r.mu.Lock()
	e, exists := r.entries[id]
	if !exists {
		r.mu.Unlock()
		return false, false
	}
	e.Enabled = !e.Enabled
	enabled = e.Enabled
	subs := slices.Clone(r.onChange)
	r.mu.Unlock()
	for _, fn := range subs {
		fn(id, enabled)
	}
	return enabled, true
}

// SetEnabled sets one layer's state. Unknown ids are ignored; setting the
// current state notifies nobody.
func (r *Registry) SetEnabled(id string, enabled bool) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.Enabled == enabled {
		r.mu.Unlock()
		return
	}
	e.Enabled = enabled
	subs := slices.Clone(r.onChange)
	r.mu.Unlock()
	for _, fn := range subs {
		fn(id, enabled)
	}
}

// OnChange registers an observer for visibility changes.
func (r *Registry) OnChange(fn func(id string, enabled bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}
