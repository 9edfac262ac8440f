package geometry

import "math"

// MaxRingVertices bounds every boundary ring; longer rings are uniformly
// subsampled. Shape fidelity is traded for render cost here.
const MaxRingVertices = 200

// SimplifyRing subsamples a ring down to MaxRingVertices, always keeping the
// original first and last vertices with evenly spaced vertices between.
// Deterministic for a given input ring; rings at or under the limit are
// returned unchanged.
func SimplifyRing(ring [][2]float64) [][2]float64 {
	n := len(ring)
	if n <= MaxRingVertices {
		return ring
	}
	out := make([][2]float64, MaxRingVertices)
	step := float64(n-1) / float64(MaxRingVertices-1)
	for i := range out {
		out[i] = ring[int(math.Round(float64(i)*step))]
	}
	out[0] = ring[0]
	out[MaxRingVertices-1] = ring[n-1]
	return out
}
