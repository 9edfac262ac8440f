package viewport

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"georisk/internal/stream"
)

// MapAction is one camera command pushed by the backend over the
// map-actions event channel.
type MapAction struct {
	Type   string    `json:"type"`
	Center []float64 `json:"center"` // [lon, lat]
}

const flyToDuration = 1500 * time.Millisecond

// ActionFeed consumes the map-actions push channel and steers the camera.
// Unlike the data channels this stream's payloads matter: each message is a
// command, not an invalidation signal.
type ActionFeed struct {
	ctrl     *Controller
	listener *stream.Listener
	log      *slog.Logger
}

// NewActionFeed wires the map-actions channel to a viewport controller.
func NewActionFeed(ctrl *Controller, listener *stream.Listener, log *slog.Logger) *ActionFeed {
	return &ActionFeed{ctrl: ctrl, listener: listener, log: log}
}

// Run blocks consuming actions until the context is cancelled.
func (f *ActionFeed) Run(ctx context.Context) error {
	return f.listener.Listen(ctx, stream.ListenerHooks{
		OnMessage: f.handle,
	})
}

func (f *ActionFeed) handle(data string) {
	var action MapAction
	if err := json.Unmarshal([]byte(data), &action); err != nil {
		f.log.Warn("unparseable map action", "error", err)
		return
	}
	if action.Type != "zoom_to_place" || len(action.Center) < 2 {
		return
	}
	surface := f.ctrl.Surface()
	if surface == nil || surface.Destroyed() {
		return
	}
	surface.FlyTo(action.Center[0], action.Center[1], flyToDuration)
}
