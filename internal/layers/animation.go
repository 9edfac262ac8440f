package layers

import (
	"math"
	"sync"
	"time"

	"georisk/internal/viewport"
)

// PulseSpec describes the sinusoidal opacity oscillation applied to animated
// layers (risk heatmap, hotspot pulses). Each primitive gets a random phase
// at creation so pulses desynchronize.
type PulseSpec struct {
	Period      time.Duration
	BaseOpacity float64
	Amplitude   float64
}

// PulseTask is a cancellable repeating frame task. A binding holds at most
// one live task and cancels-then-renews rather than stacking loops.
type PulseTask struct {
	once   sync.Once
	cancel func()
}

// Cancel stops the task. Idempotent.
func (t *PulseTask) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
	})
}

// startPulse subscribes to the surface frame callback and reapplies opacity
// to every phased primitive each tick.
func startPulse(surface viewport.Surface, layer viewport.Layer, spec PulseSpec, phases func() map[string]float64) *PulseTask {
	unsubscribe := surface.OnFrame(func(elapsed time.Duration) {
		t := elapsed.Seconds() / spec.Period.Seconds()
		for id, phase := range phases() {
			opacity := spec.BaseOpacity + spec.Amplitude*math.Sin(2*math.Pi*t+phase)
			layer.SetOpacity(id, clamp(opacity, 0, 1))
		}
	})
	return &PulseTask{cancel: unsubscribe}
}
