package dao

import (
	"math"

	"pupilla/internal/engine"
)

// Wire formats for the analysis endpoints. Numeric presentation is rounded
// to one decimal; confidence scores keep two.

type VideoInfoSpec struct {
	Duration    float64 `json:"duration"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
}

type DetectionEventSpec struct {
	Timestamp         float64 `json:"timestamp"`
	LeftDisplacement  float64 `json:"left_displacement"`
	RightDisplacement float64 `json:"right_displacement"`
	Message           string  `json:"message"`
}

type AnalysisDetailSpec struct {
	FramesAnalyzed    int                  `json:"frames_analyzed"`
	FramesWithFace    int                  `json:"frames_with_face"`
	FaceDetectionRate float64              `json:"face_detection_rate"`
	LazyEyeDetections int                  `json:"lazy_eye_detections"`
	DetectionEvents   []DetectionEventSpec `json:"detection_events"`
}

type RiskAssessmentSpec struct {
	Level          string `json:"level"`
	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`
}

type AnalysisSpec struct {
	VideoInfo      VideoInfoSpec      `json:"video_info"`
	Analysis       AnalysisDetailSpec `json:"analysis"`
	RiskAssessment RiskAssessmentSpec `json:"risk_assessment"`
}

type UploadResponse struct {
	Success               bool          `json:"success"`
	Filename              string        `json:"filename,omitempty"`
	ProcessingTimeSeconds float64       `json:"processing_time_seconds"`
	Analysis              *AnalysisSpec `json:"analysis,omitempty"`
	Message               string        `json:"message,omitempty"`
}

// DetectResponse reports the flash-photo check. Result true means a normal
// pupil reflex.
type DetectResponse struct {
	Success    bool    `json:"success"`
	Result     bool    `json:"result"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func FromResult(res *engine.Result) *AnalysisSpec {
	events := make([]DetectionEventSpec, 0, len(res.Events))
	for _, ev := range res.Events {
		events = append(events, DetectionEventSpec{
			Timestamp:         round1(ev.Timestamp),
			LeftDisplacement:  round1(ev.LeftDisplacement),
			RightDisplacement: round1(ev.RightDisplacement),
			Message:           ev.Message,
		})
	}

	return &AnalysisSpec{
		VideoInfo: VideoInfoSpec{
			Duration:    round1(res.Video.DurationSec),
			FPS:         round1(res.Video.FPS),
			TotalFrames: res.Video.TotalFrames,
		},
		Analysis: AnalysisDetailSpec{
			FramesAnalyzed:    res.FramesAnalyzed,
			FramesWithFace:    res.FramesWithFace,
			FaceDetectionRate: round1(res.FaceDetectionRate),
			LazyEyeDetections: len(res.Events),
			DetectionEvents:   events,
		},
		RiskAssessment: RiskAssessmentSpec{
			Level:          string(res.Risk.Level),
			Confidence:     res.Risk.Confidence,
			Recommendation: res.Risk.Recommendation,
		},
	}
}

func FromReflexResult(r *engine.ReflexResult) *DetectResponse {
	return &DetectResponse{
		Success:    true,
		Result:     r.Normal,
		Message:    r.Message,
		Confidence: round2(r.Confidence),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
