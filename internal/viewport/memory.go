package viewport

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySurface is a deterministic in-memory Surface: an equirectangular
// projection around the camera center, exact hit-testing, and externally
// driven frame ticks. It backs tests and headless runs.
type MemorySurface struct {
	width, height float64

	mu        sync.Mutex
	camera    CameraPose
	destroyed bool
	layers    map[string]*memoryLayer
	order     []string
	elapsed   time.Duration

	moveSubs   map[int]func(PointerEvent)
	clickSubs  map[int]func(PointerEvent)
	cameraSubs map[int]func()
	frameSubs  map[int]func(time.Duration)
	nextSub    int
}

// NewMemorySurface builds a surface with the given screen size in pixels.
func NewMemorySurface(width, height float64) *MemorySurface {
	return &MemorySurface{
		width:      width,
		height:     height,
		camera:     CameraPose{Zoom: 1},
		layers:     make(map[string]*memoryLayer),
		moveSubs:   make(map[int]func(PointerEvent)),
		clickSubs:  make(map[int]func(PointerEvent)),
		cameraSubs: make(map[int]func()),
		frameSubs:  make(map[int]func(time.Duration)),
	}
}

func (s *MemorySurface) pxPerDegree() float64 {
	return 256 * math.Pow(2, s.camera.Zoom) / 360
}

// AddLayer creates (or returns) the persistent layer with the given id.
func (s *MemorySurface) AddLayer(id string) Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return &memoryLayer{id: id, surface: nil, prims: make(map[string]*Primitive)}
	}
	if l, ok := s.layers[id]; ok {
		return l
	}
	l := &memoryLayer{id: id, surface: s, prims: make(map[string]*Primitive)}
	s.layers[id] = l
	s.order = append(s.order, id)
	return l
}

// RemoveLayer drops a layer and all its primitives.
func (s *MemorySurface) RemoveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	delete(s.layers, id)
	for i, lid := range s.order {
		if lid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Project converts a world coordinate to screen pixels.
func (s *MemorySurface) Project(lon, lat float64) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return 0, 0, false
	}
	return s.projectLocked(lon, lat)
}

func (s *MemorySurface) projectLocked(lon, lat float64) (float64, float64, bool) {
	k := s.pxPerDegree()
	x := (lon-s.camera.Longitude)*k + s.width/2
	y := (s.camera.Latitude-lat)*k + s.height/2
	return x, y, true
}

func (s *MemorySurface) unprojectLocked(x, y float64) (lon, lat float64) {
	k := s.pxPerDegree()
	lon = (x-s.width/2)/k + s.camera.Longitude
	lat = s.camera.Latitude - (y-s.height/2)/k
	return lon, lat
}

// Camera returns the current camera pose.
func (s *MemorySurface) Camera() CameraPose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// SetCamera moves the camera and notifies camera-change subscribers.
func (s *MemorySurface) SetCamera(pose CameraPose) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.camera = pose
	subs := s.cameraSubsLocked()
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// FlyTo jumps the camera to the target. The memory surface does not animate;
// duration is accepted for interface compatibility.
func (s *MemorySurface) FlyTo(lon, lat float64, _ time.Duration) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.camera.Longitude = lon
	s.camera.Latitude = lat
	subs := s.cameraSubsLocked()
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (s *MemorySurface) cameraSubsLocked() []func() {
	subs := make([]func(), 0, len(s.cameraSubs))
	for _, fn := range s.cameraSubs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *MemorySurface) subscribe(m map[int]func(PointerEvent), fn func(PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	m[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(m, id)
	}
}

// OnPointerMove registers a pointer-move handler.
func (s *MemorySurface) OnPointerMove(fn func(PointerEvent)) func() {
	return s.subscribe(s.moveSubs, fn)
}

// OnPointerClick registers a click handler.
func (s *MemorySurface) OnPointerClick(fn func(PointerEvent)) func() {
	return s.subscribe(s.clickSubs, fn)
}

// OnCameraChanged registers a camera-change handler.
func (s *MemorySurface) OnCameraChanged(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.cameraSubs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.cameraSubs, id)
	}
}

// OnFrame registers a rendering-frame handler fed the total elapsed time.
func (s *MemorySurface) OnFrame(fn func(time.Duration)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.frameSubs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.frameSubs, id)
	}
}

// Advance moves the frame clock forward and fires frame subscribers. Tests
// drive it directly; Run drives it on a ticker.
func (s *MemorySurface) Advance(dt time.Duration) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.elapsed += dt
	elapsed := s.elapsed
	subs := make([]func(time.Duration), 0, len(s.frameSubs))
	for _, fn := range s.frameSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(elapsed)
	}
}

// Run ticks the frame clock until the context is cancelled.
func (s *MemorySurface) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Advance(interval)
		}
	}
}

// PointerMove simulates pointer movement: hit-tests every layer and
// dispatches one event carrying the full hit set.
func (s *MemorySurface) PointerMove(x, y float64) {
	s.dispatchPointer(s.moveSubs, x, y)
}

// PointerClick simulates a click at the given screen coordinate.
func (s *MemorySurface) PointerClick(x, y float64) {
	s.dispatchPointer(s.clickSubs, x, y)
}

func (s *MemorySurface) dispatchPointer(m map[int]func(PointerEvent), x, y float64) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	ev := PointerEvent{X: x, Y: y, Hits: s.hitTestLocked(x, y)}
	subs := make([]func(PointerEvent), 0, len(m))
	for _, fn := range m {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// HitTest returns every primitive under the screen coordinate, in layer
// creation order.
func (s *MemorySurface) HitTest(x, y float64) []Hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.hitTestLocked(x, y)
}

func (s *MemorySurface) hitTestLocked(x, y float64) []Hit {
	var hits []Hit
	lon, lat := s.unprojectLocked(x, y)
	for _, lid := range s.order {
		layer := s.layers[lid]
		for _, pid := range layer.order {
			p := layer.prims[pid]
			if s.primitiveHitLocked(p, x, y, lon, lat) {
				hits = append(hits, Hit{LayerID: lid, PrimitiveID: pid, Record: p.Record})
			}
		}
	}
	return hits
}

func (s *MemorySurface) primitiveHitLocked(p *Primitive, x, y, lon, lat float64) bool {
	switch p.Kind {
	case PolygonPrimitive:
		return ringContains(p.Ring, lon, lat)
	case LabelPrimitive:
		return false
	default:
		px, py, _ := s.projectLocked(p.Longitude, p.Latitude)
		r := p.Appearance.Radius
		if r <= 0 {
			r = 8
		}
		return math.Hypot(px-x, py-y) <= r
	}
}

// ringContains is a standard ray-casting point-in-polygon test on lon/lat.
func ringContains(ring [][2]float64, lon, lat float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Destroy tears the surface down exactly once. All later calls no-op.
func (s *MemorySurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.layers = make(map[string]*memoryLayer)
	s.order = nil
	s.moveSubs = make(map[int]func(PointerEvent))
	s.clickSubs = make(map[int]func(PointerEvent))
	s.cameraSubs = make(map[int]func())
	s.frameSubs = make(map[int]func(time.Duration))
}

// Destroyed reports whether Destroy has run.
func (s *MemorySurface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// LayerPrimitives exposes a layer's rendered primitives for assertions.
func (s *MemorySurface) LayerPrimitives(layerID string) []Primitive {
	s.mu.Lock()
	defer s.mu.Unlock()
	layer, ok := s.layers[layerID]
	if !ok {
		return nil
	}
	out := make([]Primitive, 0, len(layer.order))
	for _, pid := range layer.order {
		out = append(out, *layer.prims[pid])
	}
	return out
}

type memoryLayer struct {
	id      string
	surface *MemorySurface
	prims   map[string]*Primitive
	order   []string
}

func (l *memoryLayer) ID() string { return l.id }

func (l *memoryLayer) Add(p Primitive) string {
	if l.surface == nil {
		return ""
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	id := uuid.NewString()
	copied := p
	l.prims[id] = &copied
	l.order = append(l.order, id)
	return id
}

func (l *memoryLayer) SetAppearance(primitiveID string, ap Appearance) {
	if l.surface == nil {
		return
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	if p, ok := l.prims[primitiveID]; ok {
		p.Appearance = ap
	}
}

func (l *memoryLayer) SetOpacity(primitiveID string, opacity float64) {
	if l.surface == nil {
		return
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	if p, ok := l.prims[primitiveID]; ok {
		p.Appearance.Opacity = opacity
	}
}

func (l *memoryLayer) Clear() {
	if l.surface == nil {
		return
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	l.prims = make(map[string]*Primitive)
	l.order = nil
}

func (l *memoryLayer) Count() int {
	if l.surface == nil {
		return 0
	}
	l.surface.mu.Lock()
	defer l.surface.mu.Unlock()
	return len(l.prims)
}
