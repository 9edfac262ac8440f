// Package viewport owns the lifecycle of one map rendering surface. The
// rendering engine itself is an external capability consumed through the
// Surface interface; MemorySurface is the headless implementation used by
// tests and by the engine when no GPU-backed provider is wired in.
package viewport

import "time"

// CameraPose is a fixed camera position over the map.
type CameraPose struct {
	Longitude float64
	Latitude  float64
	Zoom      float64
}

// PrimitiveKind discriminates renderable shapes.
type PrimitiveKind string

const (
	PointPrimitive   PrimitiveKind = "point"
	PolygonPrimitive PrimitiveKind = "polygon"
	IconPrimitive    PrimitiveKind = "icon"
	LabelPrimitive   PrimitiveKind = "label"
)

// Appearance is the mutable visual state of a primitive.
type Appearance struct {
	Fill     string
	Outline  string
	Opacity  float64
	Radius   float64
	Rotation float64
}

// Primitive is one renderable shape placed on the map surface. Record holds
// the domain payload returned from hit-tests.
type Primitive struct {
	Kind       PrimitiveKind
	Longitude  float64
	Latitude   float64
	Ring       [][2]float64 // lon/lat exterior ring for polygons
	Label      string
	Appearance Appearance
	Record     any
}

// Hit identifies one primitive found under a screen coordinate.
type Hit struct {
	LayerID     string
	PrimitiveID string
	Record      any
}

// PointerEvent carries a screen coordinate plus every hit at that point
// across all layers; each layer binding filters and prioritizes on its own.
type PointerEvent struct {
	X, Y float64
	Hits []Hit
}

// Layer is one persistent graphic layer. Its primitives are exclusively
// owned by the data layer binding that created it.
type Layer interface {
	ID() string
	Add(p Primitive) string
	SetAppearance(primitiveID string, ap Appearance)
	SetOpacity(primitiveID string, opacity float64)
	Clear()
	Count() int
}

// Surface is the rendering-engine capability boundary. Every method must
// tolerate being called after Destroy and degrade to a no-op (Project
// reports unavailable) rather than panic.
type Surface interface {
	AddLayer(id string) Layer
	RemoveLayer(id string)

	Project(lon, lat float64) (x, y float64, ok bool)
	Camera() CameraPose
	SetCamera(pose CameraPose)
	FlyTo(lon, lat float64, duration time.Duration)

	OnPointerMove(fn func(PointerEvent)) (unsubscribe func())
	OnPointerClick(fn func(PointerEvent)) (unsubscribe func())
	OnCameraChanged(fn func()) (unsubscribe func())
	OnFrame(fn func(elapsed time.Duration)) (unsubscribe func())

	Destroy()
	Destroyed() bool
}
