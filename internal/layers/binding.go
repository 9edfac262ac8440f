package layers

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"georisk/internal/domain"
	"georisk/internal/platform/metrics"
	"georisk/internal/stream"
	"georisk/internal/viewport"
)

// Selection is the payload handed to the popup renderer. Kind tags the
// domain so one renderer can discriminate; a nil *Selection means the
// pointer moved off all primitives.
type Selection struct {
	Kind    domain.Kind
	Record  any
	X, Y    float64
	Clicked bool
}

// SelectFunc receives hover and click selections.
type SelectFunc func(*Selection)

// hitPriority resolves overlapping hits across layers: point and icon
// layers take precedence over area layers, so a click through a facility
// marker never selects the advisory region underneath it.
var hitPriority = map[string]int{
	string(domain.KindFacility): 50,
	string(domain.KindTrack):    40,
	string(domain.KindRisk):     30,
	string(domain.KindHotspot):  20,
	string(domain.KindAdvisory): 10,
}

// Binding reconciles one domain's snapshots against one persistent graphic
// layer and wires pointer interaction to the selection callback. It
// exclusively owns every primitive on its layer.
type Binding[T any] struct {
	kind     domain.Kind
	ctrl     *viewport.Controller
	res      *stream.Resource[T]
	reg      *Registry
	build    func(T) []viewport.Primitive
	pulse    *PulseSpec
	onSelect SelectFunc
	log      *slog.Logger
	meter    *metrics.Metrics

	mu        sync.Mutex
	mounted   bool
	layer     viewport.Layer
	unsubs    []func()
	pulseTask *PulseTask
	idle      map[string]viewport.Appearance
	phases    map[string]float64
	hovered   string
}

// NewBinding wires a domain store to a layer. pulse may be nil for static
// layers. The binding reacts to both snapshot replacements and visibility
// changes for its own layer id.
func NewBinding[T any](
	kind domain.Kind,
	ctrl *viewport.Controller,
	res *stream.Resource[T],
	reg *Registry,
	build func(T) []viewport.Primitive,
	pulse *PulseSpec,
	onSelect SelectFunc,
	log *slog.Logger,
	meter *metrics.Metrics,
) *Binding[T] {
	b := &Binding[T]{
		kind:     kind,
		ctrl:     ctrl,
		res:      res,
		reg:      reg,
		build:    build,
		pulse:    pulse,
		onSelect: onSelect,
		log:      log,
		meter:    meter,
		idle:     make(map[string]viewport.Appearance),
		phases:   make(map[string]float64),
	}
	res.OnSnapshot(func() { b.Update() })
	reg.OnChange(func(id string, _ bool) {
		if id == string(kind) {
			b.Update()
		}
	})
	return b
}

// LayerID identifies this binding's layer on the surface.
func (b *Binding[T]) LayerID() string { return string(b.kind) }

// Mount creates the persistent layer and registers pointer handlers. Safe to
// call once per viewport lifetime; remounting after Unmount restarts the
// pulse loop rather than stacking a second one.
func (b *Binding[T]) Mount() {
	surface := b.ctrl.Surface()
	if surface == nil || surface.Destroyed() {
		return
	}

	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.layer = surface.AddLayer(b.LayerID())
	b.unsubs = append(b.unsubs,
		surface.OnPointerMove(b.handleMove),
		surface.OnPointerClick(b.handleClick),
	)
	if b.pulse != nil {
		b.pulseTask.Cancel()
		b.pulseTask = startPulse(surface, b.layer, *b.pulse, b.phaseSnapshot)
	}
	b.mu.Unlock()

	b.Update()
}

// Unmount removes handlers, cancels the pulse loop, and drops the layer.
// Tolerates the surface having been destroyed first.
func (b *Binding[T]) Unmount() {
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = false
	unsubs := b.unsubs
	b.unsubs = nil
	task := b.pulseTask
	b.pulseTask = nil
	b.layer = nil
	b.idle = make(map[string]viewport.Appearance)
	b.phases = make(map[string]float64)
	b.hovered = ""
	b.mu.Unlock()

	task.Cancel()
	for _, unsub := range unsubs {
		unsub()
	}
	if surface := b.ctrl.Surface(); surface != nil && !surface.Destroyed() {
		surface.RemoveLayer(b.LayerID())
	}
}

// Update reconciles the layer with the current snapshot and visibility:
// disabled clears everything; enabled clears and rebuilds from scratch.
// Rebuild-from-scratch is deterministic, so calling Update twice with the
// same inputs yields the same scene.
func (b *Binding[T]) Update() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted || b.layer == nil {
		return
	}
	surface := b.ctrl.Surface()
	if surface == nil || surface.Destroyed() {
		return
	}

	b.layer.Clear()
	b.idle = make(map[string]viewport.Appearance)
	b.phases = make(map[string]float64)
	b.hovered = ""

	if !b.reg.Enabled(string(b.kind)) {
		return
	}

	prims := b.build(b.res.Snapshot())
	for _, p := range prims {
		id := b.layer.Add(p)
		if id == "" {
			continue
		}
		b.idle[id] = p.Appearance
		if b.pulse != nil {
			b.phases[id] = rand.Float64() * 2 * math.Pi
		}
	}
	b.meter.AddPrimitivesRebuilt(string(b.kind), len(prims))
}

// phaseSnapshot hands the pulse loop a copy of the phase table.
func (b *Binding[T]) phaseSnapshot() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.phases))
	for id, phase := range b.phases {
		out[id] = phase
	}
	return out
}

// ownHit returns this layer's first hit, unless a higher-priority layer is
// also hit at the same point, in which case this binding suppresses itself.
func (b *Binding[T]) ownHit(ev viewport.PointerEvent) (viewport.Hit, bool) {
	var own viewport.Hit
	found := false
	myPriority := hitPriority[b.LayerID()]
	for _, hit := range ev.Hits {
		if hit.LayerID == b.LayerID() {
			if !found {
				own = hit
				found = true
			}
			continue
		}
		if hitPriority[hit.LayerID] > myPriority {
			return viewport.Hit{}, false
		}
	}
	return own, found
}

func (b *Binding[T]) handleMove(ev viewport.PointerEvent) {
	hit, ok := b.ownHit(ev)

	b.mu.Lock()
	if !b.mounted || b.layer == nil {
		b.mu.Unlock()
		return
	}
	prev := b.hovered
	next := ""
	if ok {
		next = hit.PrimitiveID
	}
	if prev == next {
		b.mu.Unlock()
		return
	}
	b.hovered = next
	if prev != "" {
		if idle, exists := b.idle[prev]; exists {
			b.layer.SetAppearance(prev, idle)
		}
	}
	if next != "" {
		if idle, exists := b.idle[next]; exists {
			b.layer.SetAppearance(next, highlighted(idle))
		}
	}
	b.mu.Unlock()

	if b.onSelect == nil {
		return
	}
	if next == "" {
		// Losing the hover to another layer is a handoff, not a deselection.
		// The winning binding announces the new selection; announcing nil
		// here would race it and close whatever it just opened. Only a move
		// onto empty ground clears the selection.
		if len(ev.Hits) == 0 {
			b.onSelect(nil)
		}
		return
	}
	b.onSelect(&Selection{Kind: b.kind, Record: hit.Record, X: ev.X, Y: ev.Y})
}

func (b *Binding[T]) handleClick(ev viewport.PointerEvent) {
	hit, ok := b.ownHit(ev)
	if !ok || b.onSelect == nil {
		return
	}
	b.onSelect(&Selection{Kind: b.kind, Record: hit.Record, X: ev.X, Y: ev.Y, Clicked: true})
}

// highlighted derives the hover appearance from the idle one.
func highlighted(idle viewport.Appearance) viewport.Appearance {
	idle.Outline = highlightFill
	idle.Opacity = 1
	return idle
}
