package viewport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"georisk/internal/stream"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProjectRoundTrip(t *testing.T) {
	s := NewMemorySurface(800, 600)
	s.SetCamera(CameraPose{Longitude: 115, Latitude: 12, Zoom: 3})

	x, y, ok := s.Project(115, 12)
	require.True(t, ok)
	require.InDelta(t, 400, x, 1e-9, "camera center projects to screen center")
	require.InDelta(t, 300, y, 1e-9)

	// East is right, north is up.
	x2, _, _ := s.Project(120, 12)
	require.Greater(t, x2, x)
	_, y2, _ := s.Project(115, 20)
	require.Less(t, y2, y)
}

func TestHitTestOrdersAndFilters(t *testing.T) {
	s := NewMemorySurface(800, 600)
	s.SetCamera(CameraPose{Zoom: 2})

	area := s.AddLayer("area")
	area.Add(Primitive{
		Kind: PolygonPrimitive,
		Ring: [][2]float64{{-10, -10}, {10, -10}, {10, 10}, {-10, 10}, {-10, -10}},
	})
	marks := s.AddLayer("marks")
	marks.Add(Primitive{Kind: PointPrimitive, Longitude: 0, Latitude: 0, Appearance: Appearance{Radius: 12}})
	labels := s.AddLayer("labels")
	labels.Add(Primitive{Kind: LabelPrimitive, Longitude: 0, Latitude: 0})

	hits := s.HitTest(400, 300)
	require.Len(t, hits, 2, "labels never register hits")
	require.Equal(t, "area", hits[0].LayerID)
	require.Equal(t, "marks", hits[1].LayerID)

	// Outside the marker radius but inside the polygon.
	hits = s.HitTest(420, 300)
	require.Len(t, hits, 1)
	require.Equal(t, "area", hits[0].LayerID)

	require.Empty(t, s.HitTest(5, 5))
}

func TestAdvanceFiresFrameSubscribersWithTotalElapsed(t *testing.T) {
	s := NewMemorySurface(800, 600)
	var seen []time.Duration
	unsub := s.OnFrame(func(elapsed time.Duration) { seen = append(seen, elapsed) })

	s.Advance(100 * time.Millisecond)
	s.Advance(250 * time.Millisecond)
	require.Equal(t, []time.Duration{100 * time.Millisecond, 350 * time.Millisecond}, seen)

	unsub()
	s.Advance(time.Second)
	require.Len(t, seen, 2)
}

func TestDestroyIsTerminal(t *testing.T) {
	s := NewMemorySurface(800, 600)
	layer := s.AddLayer("marks")
	layer.Add(Primitive{Kind: PointPrimitive})

	var frames int
	s.OnFrame(func(time.Duration) { frames++ })

	s.Destroy()
	require.True(t, s.Destroyed())

	_, _, ok := s.Project(0, 0)
	require.False(t, ok)
	require.Empty(t, s.HitTest(400, 300))
	s.Advance(time.Second)
	require.Zero(t, frames)

	// Repeated destroys and post-destroy mutations are harmless.
	require.NotPanics(t, func() {
		s.Destroy()
		s.SetCamera(CameraPose{Zoom: 5})
		s.AddLayer("late").Add(Primitive{Kind: PointPrimitive})
		s.RemoveLayer("marks")
	})
}

func TestControllerProjectAfterDestroy(t *testing.T) {
	s := NewMemorySurface(800, 600)
	ctrl := NewController(s, DefaultCamera, discardLogger())

	_, _, ok := ctrl.Project(115, 12)
	require.True(t, ok)

	ctrl.Destroy()
	_, _, ok = ctrl.Project(115, 12)
	require.False(t, ok, "coordinate transforms report unavailable after teardown")
	require.Nil(t, ctrl.Surface())
	require.NotPanics(t, ctrl.Destroy)

	unsub := ctrl.OnCameraChanged(func() {})
	require.NotPanics(t, unsub)
}

func TestControllerAppliesInitialPose(t *testing.T) {
	s := NewMemorySurface(800, 600)
	NewController(s, CameraPose{Longitude: 100, Latitude: -5, Zoom: 4}, discardLogger())
	require.Equal(t, CameraPose{Longitude: 100, Latitude: -5, Zoom: 4}, s.Camera())
}

func TestCameraChangeNotifies(t *testing.T) {
	s := NewMemorySurface(800, 600)
	var calls int
	s.OnCameraChanged(func() { calls++ })

	s.SetCamera(CameraPose{Longitude: 10, Zoom: 3})
	s.FlyTo(120, 30, time.Second)
	require.Equal(t, 2, calls)

	pose := s.Camera()
	require.Equal(t, 120.0, pose.Longitude)
	require.Equal(t, 30.0, pose.Latitude)
	require.Equal(t, 3.0, pose.Zoom, "FlyTo keeps the current zoom")
}

func TestActionFeedSteersCamera(t *testing.T) {
	actions := []string{
		`{"type": "zoom_to_place", "center": [139.69, 35.68], "zoom": 8}`,
		`not json`,
		`{"type": "refresh_layers"}`,
		`{"type": "zoom_to_place", "center": [103.85]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		for _, a := range actions {
			fmt.Fprintf(w, "data: %s\n\n", a)
		}
		fl.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := NewMemorySurface(800, 600)
	ctrl := NewController(s, DefaultCamera, discardLogger())
	listener := stream.NewListener("map-actions", srv.URL, srv.Client(), 50*time.Millisecond, discardLogger(), nil)
	feed := NewActionFeed(ctrl, listener, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	require.Eventually(t, func() bool {
		pose := s.Camera()
		return pose.Longitude == 139.69 && pose.Latitude == 35.68
	}, 2*time.Second, 10*time.Millisecond, "only the well-formed zoom command moves the camera")
}
