// Package popup keeps a selected item's popup glued to its world position.
package popup

import (
	"math"
	"sync"

	"georisk/internal/viewport"
)

// Position is a screen-space popup anchor.
type Position struct {
	X, Y float64
}

// epsilon is the minimum screen movement worth a re-render.
const epsilon = 0.5

// Tracker recomputes the screen anchor of the selected item on every
// camera-change tick, skipping updates smaller than epsilon. It stops
// silently once the viewport has been destroyed.
type Tracker struct {
	ctrl   *viewport.Controller
	onMove func(Position)

	mu      sync.Mutex
	lon     float64
	lat     float64
	active  bool
	hasLast bool
	last    Position
	unsub   func()
}

// NewTracker builds a tracker; onMove receives each meaningful anchor move.
func NewTracker(ctrl *viewport.Controller, onMove func(Position)) *Tracker {
	return &Tracker{ctrl: ctrl, onMove: onMove}
}

// Follow anchors the popup to a world coordinate and begins tracking.
// Calling Follow again re-anchors without stacking subscriptions.
func (t *Tracker) Follow(lon, lat float64) {
	t.mu.Lock()
	t.lon, t.lat = lon, lat
	t.hasLast = false
	start := !t.active
	t.active = true
	t.mu.Unlock()

	if start {
		unsub := t.ctrl.OnCameraChanged(t.tick)
		t.mu.Lock()
		t.unsub = unsub
		t.mu.Unlock()
	}
	t.tick()
}

// Stop detaches the popup. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	unsub := t.unsub
	t.unsub = nil
	t.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// tick reprojects the anchor. A destroyed viewport reports unavailable, and
// the tracker just goes quiet.
func (t *Tracker) tick() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	lon, lat := t.lon, t.lat
	t.mu.Unlock()

	x, y, ok := t.ctrl.Project(lon, lat)
	if !ok {
		return
	}

	t.mu.Lock()
	if t.hasLast && math.Abs(x-t.last.X) <= epsilon && math.Abs(y-t.last.Y) <= epsilon {
		t.mu.Unlock()
		return
	}
	t.last = Position{X: x, Y: y}
	t.hasLast = true
	onMove := t.onMove
	pos := t.last
	t.mu.Unlock()

	if onMove != nil {
		onMove(pos)
	}
}
