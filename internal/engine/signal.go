package engine

import (
	"math"
	"sort"
)

// displacementBuilder turns face-found observations into per-eye
// displacement samples. The baseline for each eye is the component-wise
// median over the trailing window of face-found observations, current one
// included, so the very first sample always measures zero displacement.
// A rolling median keeps the signal centered on where the eye usually sits
// instead of a single anchor frame; slow head drift moves the baseline with
// it while quick jumps stand out.
type displacementBuilder struct {
	left  eyeTrack
	right eyeTrack
}

func newDisplacementBuilder(window int) *displacementBuilder {
	if window < 1 {
		window = 1
	}
	return &displacementBuilder{
		left:  eyeTrack{window: window},
		right: eyeTrack{window: window},
	}
}

// push consumes one face-found observation and returns its displacement
// sample. Observations without a face must be filtered out by the caller.
func (b *displacementBuilder) push(obs FrameObservation) DisplacementSample {
	return DisplacementSample{
		Timestamp: obs.Timestamp,
		Left:      b.left.push(obs.LeftEye),
		Right:     b.right.push(obs.RightEye),
	}
}

type eyeTrack struct {
	window int
	xs     []float64
	ys     []float64
}

func (t *eyeTrack) push(p Point) float64 {
	t.xs = appendCapped(t.xs, p.X, t.window)
	t.ys = appendCapped(t.ys, p.Y, t.window)
	baseline := Point{X: median(t.xs), Y: median(t.ys)}
	return distance(p, baseline)
}

func appendCapped(vals []float64, v float64, limit int) []float64 {
	vals = append(vals, v)
	if len(vals) > limit {
		vals = vals[len(vals)-limit:]
	}
	return vals
}

// median of an even count is the mean of the two middle values.
func median(vals []float64) float64 {
	n := len(vals)
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
