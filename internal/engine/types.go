// Package engine implements the eye displacement analysis pipeline: it
// consumes per-frame eye observations, builds displacement signals against a
// rolling baseline, detects sustained asymmetry events and aggregates them
// into a risk assessment. The package is free of any video or inference
// dependency; frames enter through the ObservationSource interface.
package engine

import "context"

type Point struct {
	X float64
	Y float64
}

// VideoInfo describes the source video. Computed once at ingestion.
type VideoInfo struct {
	DurationSec float64
	FPS         float64
	TotalFrames int
}

// FrameObservation is the outcome of locating eyes in one sampled frame.
// When FaceFound is false the eye centers are meaningless.
type FrameObservation struct {
	FrameIndex int
	Timestamp  float64
	FaceFound  bool
	LeftEye    Point
	RightEye   Point
}

// DisplacementSample is the per-eye distance from the rolling baseline at
// one face-found frame.
type DisplacementSample struct {
	Timestamp float64
	Left      float64
	Right     float64
}

func (s DisplacementSample) Asymmetry() float64 {
	d := s.Left - s.Right
	if d < 0 {
		return -d
	}
	return d
}

// DetectionEvent is one sustained asymmetry episode. Timestamp is the onset,
// the displacement values are taken at the peak-asymmetry sample.
type DetectionEvent struct {
	Timestamp         float64
	LeftDisplacement  float64
	RightDisplacement float64
	Message           string
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type RiskAssessment struct {
	Level          RiskLevel
	Confidence     string
	Recommendation string
}

// Result is the complete outcome of one analysis run. Results are never
// persisted; nothing carries over between runs.
type Result struct {
	Video             VideoInfo
	FramesAnalyzed    int
	FramesWithFace    int
	FaceDetectionRate float64 // percent
	Events            []DetectionEvent
	Risk              RiskAssessment
}

// ReflexResult is the outcome of a flash-photo pupil reflex check. Normal
// means no white or yellow-white reflex was found.
type ReflexResult struct {
	Normal       bool
	Confidence   float64
	EyesExamined int
	Message      string
}

// ObservationSource yields eye observations for sampled frames in timestamp
// order. Next returns io.EOF after the last frame. Implementations own the
// underlying decoder and detector.
type ObservationSource interface {
	Info() VideoInfo
	Next(ctx context.Context) (FrameObservation, error)
	Close() error
}
