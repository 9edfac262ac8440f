package viewport

import (
	"log/slog"
	"sync"
)

// Controller owns exactly one rendering surface: it applies the initial
// camera pose at construction, hands the live surface to children by
// reference, and guarantees the surface is destroyed exactly once. After
// teardown every coordinate transform reports unavailable instead of
// panicking.
type Controller struct {
	log *slog.Logger

	mu      sync.Mutex
	surface Surface
}

// DefaultCamera frames the Asia-Pacific region the dashboard covers.
var DefaultCamera = CameraPose{Longitude: 115, Latitude: 12, Zoom: 3}

// NewController binds the controller to a surface and sets the initial pose.
func NewController(surface Surface, pose CameraPose, log *slog.Logger) *Controller {
	surface.SetCamera(pose)
	return &Controller{log: log, surface: surface}
}

// Surface returns the live surface, or nil after teardown.
func (c *Controller) Surface() Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// Project converts a world coordinate to screen pixels. Returns ok=false
// once the surface has been torn down.
func (c *Controller) Project(lon, lat float64) (x, y float64, ok bool) {
	c.mu.Lock()
	surface := c.surface
	c.mu.Unlock()
	if surface == nil || surface.Destroyed() {
		return 0, 0, false
	}
	return surface.Project(lon, lat)
}

// OnCameraChanged forwards a camera-change subscription to the live surface.
// Returns a no-op unsubscribe once torn down.
func (c *Controller) OnCameraChanged(fn func()) func() {
	c.mu.Lock()
	surface := c.surface
	c.mu.Unlock()
	if surface == nil || surface.Destroyed() {
		return func() {}
	}
	return surface.OnCameraChanged(fn)
}

// Destroy tears the surface down exactly once and clears the reference.
func (c *Controller) Destroy() {
	c.mu.Lock()
	surface := c.surface
	c.surface = nil
	c.mu.Unlock()
	if surface == nil {
		return
	}
	surface.Destroy()
	c.log.Info("viewport destroyed")
}
