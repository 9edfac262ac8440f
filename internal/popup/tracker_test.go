package popup

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"georisk/internal/viewport"
)

func newTracked(t *testing.T) (*viewport.MemorySurface, *viewport.Controller, *Tracker, *[]Position) {
	t.Helper()
	surface := viewport.NewMemorySurface(800, 600)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := viewport.NewController(surface, viewport.CameraPose{Zoom: 2}, log)
	var moves []Position
	tracker := NewTracker(ctrl, func(p Position) { moves = append(moves, p) })
	return surface, ctrl, tracker, &moves
}

func TestFollowEmitsInitialAnchor(t *testing.T) {
	_, _, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	require.Len(t, *moves, 1)
	require.InDelta(t, 400, (*moves)[0].X, 1e-9)
	require.InDelta(t, 300, (*moves)[0].Y, 1e-9)
}

func TestAnchorFollowsCamera(t *testing.T) {
	surface, _, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	surface.FlyTo(10, 0, time.Second)
	require.Len(t, *moves, 2)
	require.Less(t, (*moves)[1].X, (*moves)[0].X, "camera panning east moves the anchor west")
}

func TestSubPixelMovementSkipped(t *testing.T) {
	surface, _, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	require.Len(t, *moves, 1)

	// 0.1 degrees at zoom 2 is well under half a pixel.
	pose := surface.Camera()
	pose.Longitude += 0.1
	surface.SetCamera(pose)
	require.Len(t, *moves, 1, "movement within epsilon is not re-rendered")

	pose.Longitude += 20
	surface.SetCamera(pose)
	require.Len(t, *moves, 2)
}

func TestRefollowReanchorsWithoutStacking(t *testing.T) {
	surface, _, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	tracker.Follow(10, 5)
	require.Len(t, *moves, 2)

	// One camera change must yield exactly one move, not one per Follow call.
	surface.FlyTo(50, 0, time.Second)
	require.Len(t, *moves, 3)
}

func TestStopDetaches(t *testing.T) {
	surface, _, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	tracker.Stop()
	tracker.Stop()

	surface.FlyTo(50, 0, time.Second)
	require.Len(t, *moves, 1, "no updates after Stop")
}

func TestDestroyedViewportGoesQuiet(t *testing.T) {
	_, ctrl, tracker, moves := newTracked(t)

	tracker.Follow(0, 0)
	ctrl.Destroy()

	require.NotPanics(t, func() { tracker.Follow(10, 10) })
	require.Len(t, *moves, 1, "no anchor updates once the viewport is gone")
}
