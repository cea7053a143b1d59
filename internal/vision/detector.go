// Package vision owns everything that touches pixels: video decoding, frame
// sampling, eye location and the flash-photo pupil reflex check. It feeds
// the engine package through engine.ObservationSource and is the only
// package importing gocv or the Triton client.
package vision

import (
	"context"

	"gocv.io/x/gocv"

	"pupilla/internal/engine"
)

// EyePair holds both eye centers in frame coordinates. Left/Right follow
// image order: the left eye is the one with the smaller x.
type EyePair struct {
	Left       engine.Point
	Right      engine.Point
	Confidence float64
}

// Detector locates eyes in a single frame. Implementations must treat a
// frame without a locatable face as a normal outcome and return (nil, nil);
// an error means the detector itself failed on this frame.
type Detector interface {
	DetectEyes(ctx context.Context, frame gocv.Mat) (*EyePair, error)
	// Ready reports whether the backend can serve inference right now.
	Ready(ctx context.Context) error
	Close() error
}

// orderPair returns the two centers as (left, right) by x coordinate.
func orderPair(a, b engine.Point) (engine.Point, engine.Point) {
	if b.X < a.X {
		return b, a
	}
	return a, b
}
