package vision

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"pupilla/internal/config"
	"pupilla/internal/engine"
)

// CascadeDetector locates eyes with Haar cascades, fully in-process. The
// underlying classifiers are not safe for concurrent use, so a mutex
// serializes DetectEyes calls.
type CascadeDetector struct {
	mu   sync.Mutex
	face gocv.CascadeClassifier
	eye  gocv.CascadeClassifier
}

func NewCascadeDetector(cfg config.CascadeConfig) (*CascadeDetector, error) {
	face := gocv.NewCascadeClassifier()
	if !face.Load(cfg.FaceCascadeFile) {
		face.Close()
		return nil, fmt.Errorf("load face cascade %s", cfg.FaceCascadeFile)
	}
	eye := gocv.NewCascadeClassifier()
	if !eye.Load(cfg.EyeCascadeFile) {
		face.Close()
		eye.Close()
		return nil, fmt.Errorf("load eye cascade %s", cfg.EyeCascadeFile)
	}
	return &CascadeDetector{face: face, eye: eye}, nil
}

func (d *CascadeDetector) DetectEyes(ctx context.Context, frame gocv.Mat) (*EyePair, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	faces := d.face.DetectMultiScaleWithParams(gray, 1.3, 5, 0,
		image.Pt(30, 30), image.Pt(0, 0))
	if len(faces) == 0 {
		return nil, nil
	}
	faceRect := largestRect(faces)

	roi := gray.Region(faceRect)
	defer roi.Close()
	eyes := d.eye.DetectMultiScaleWithParams(roi, 1.1, 3, 0,
		image.Pt(10, 10), image.Pt(0, 0))
	if len(eyes) < 2 {
		return nil, nil
	}

	// Two largest eye candidates; reflections and nostrils come out small.
	sort.Slice(eyes, func(i, j int) bool {
		return area(eyes[i]) > area(eyes[j])
	})
	a := rectCenter(eyes[0], faceRect)
	b := rectCenter(eyes[1], faceRect)
	left, right := orderPair(a, b)
	return &EyePair{Left: left, Right: right, Confidence: 1}, nil
}

func (d *CascadeDetector) Ready(ctx context.Context) error { return nil }

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.face.Close()
	d.eye.Close()
	return nil
}

func largestRect(rects []image.Rectangle) image.Rectangle {
	best := rects[0]
	for _, r := range rects[1:] {
		if area(r) > area(best) {
			best = r
		}
	}
	return best
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// rectCenter maps an eye rect found inside a face ROI back to frame
// coordinates.
func rectCenter(eye, face image.Rectangle) engine.Point {
	return engine.Point{
		X: float64(face.Min.X) + float64(eye.Min.X) + float64(eye.Dx())/2,
		Y: float64(face.Min.Y) + float64(eye.Min.Y) + float64(eye.Dy())/2,
	}
}
