package engine

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"pupilla/internal/config"
)

// fakeSource replays a fixed observation list.
type fakeSource struct {
	info    VideoInfo
	obs     []FrameObservation
	pos     int
	tailErr error
}

func (f *fakeSource) Info() VideoInfo { return f.info }

func (f *fakeSource) Next(ctx context.Context) (FrameObservation, error) {
	if f.pos >= len(f.obs) {
		if f.tailErr != nil {
			return FrameObservation{}, f.tailErr
		}
		return FrameObservation{}, io.EOF
	}
	o := f.obs[f.pos]
	f.pos++
	return o, nil
}

func (f *fakeSource) Close() error { return nil }

func steadyObs(n, withFace int) []FrameObservation {
	obs := make([]FrameObservation, 0, n)
	for i := 0; i < n; i++ {
		o := FrameObservation{
			FrameIndex: i,
			Timestamp:  float64(i) / 15,
		}
		if i < withFace {
			o.FaceFound = true
			o.LeftEye = Point{X: 100, Y: 120}
			o.RightEye = Point{X: 180, Y: 120}
		}
		obs = append(obs, o)
	}
	return obs
}

func testEngine() *Engine {
	return New(config.DefaultConfig().Engine)
}

func TestAnalyzeInvariants(t *testing.T) {
	src := &fakeSource{
		info: VideoInfo{DurationSec: 40, FPS: 15, TotalFrames: 600},
		obs:  steadyObs(600, 570),
	}
	res, err := testEngine().Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.FramesWithFace > res.FramesAnalyzed {
		t.Errorf("frames_with_face %d > frames_analyzed %d", res.FramesWithFace, res.FramesAnalyzed)
	}
	if res.FramesAnalyzed > res.Video.TotalFrames {
		t.Errorf("frames_analyzed %d > total_frames %d", res.FramesAnalyzed, res.Video.TotalFrames)
	}
	for i := 1; i < len(res.Events); i++ {
		if res.Events[i].Timestamp < res.Events[i-1].Timestamp {
			t.Errorf("events out of order at %d", i)
		}
	}
}

func TestAnalyzeCleanVideo(t *testing.T) {
	src := &fakeSource{
		info: VideoInfo{DurationSec: 40, FPS: 15, TotalFrames: 600},
		obs:  steadyObs(600, 570),
	}
	res, err := testEngine().Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.FramesAnalyzed != 600 || res.FramesWithFace != 570 {
		t.Fatalf("counts = %d/%d, want 600/570", res.FramesAnalyzed, res.FramesWithFace)
	}
	if res.FaceDetectionRate != 95 {
		t.Errorf("rate = %v, want 95", res.FaceDetectionRate)
	}
	if len(res.Events) != 0 {
		t.Errorf("steady eyes produced %d events", len(res.Events))
	}
	if res.Risk.Level != RiskLow || res.Risk.Recommendation != "No issues detected." {
		t.Errorf("risk = %+v, want LOW / no issues", res.Risk)
	}
	if res.Risk.Confidence != "High" {
		t.Errorf("confidence = %q, want High at 95%% coverage", res.Risk.Confidence)
	}
}

func TestAnalyzeNoFaceAnywhere(t *testing.T) {
	src := &fakeSource{
		info: VideoInfo{DurationSec: 10, FPS: 15, TotalFrames: 150},
		obs:  steadyObs(150, 0),
	}
	res, err := testEngine().Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("a video without faces must not fail the run: %v", err)
	}
	if res.FaceDetectionRate != 0 {
		t.Errorf("rate = %v, want 0", res.FaceDetectionRate)
	}
	if len(res.Events) != 0 {
		t.Errorf("got %d events without any face", len(res.Events))
	}
	if res.Risk.Level != RiskLow || res.Risk.Confidence != "Low" {
		t.Errorf("risk = %+v, want LOW with Low confidence", res.Risk)
	}
}

func TestAnalyzeDetectsLeftEyeJump(t *testing.T) {
	obs := make([]FrameObservation, 0, 40)
	for i := 0; i < 20; i++ {
		obs = append(obs, faceObs(float64(i)/15, Point{X: 100, Y: 100}, Point{X: 180, Y: 100}))
	}
	// Left eye displaced 40px for the rest of the clip; the rolling median
	// lags behind, so the asymmetry clears the enter threshold for well
	// over minSustain samples.
	for i := 20; i < 30; i++ {
		obs = append(obs, faceObs(float64(i)/15, Point{X: 140, Y: 100}, Point{X: 180, Y: 100}))
	}
	for i := range obs {
		obs[i].FrameIndex = i
	}
	src := &fakeSource{
		info: VideoInfo{DurationSec: 2, FPS: 15, TotalFrames: 30},
		obs:  obs,
	}
	res, err := testEngine().Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(res.Events))
	}
	ev := res.Events[0]
	if ev.Timestamp != 20.0/15 {
		t.Errorf("onset = %v, want %v (first displaced frame)", ev.Timestamp, 20.0/15)
	}
	if ev.LeftDisplacement <= ev.RightDisplacement {
		t.Errorf("peak = (%v, %v), left should dominate", ev.LeftDisplacement, ev.RightDisplacement)
	}
	if res.Risk.Level != RiskMedium {
		t.Errorf("risk = %s, want MEDIUM for one mild event", res.Risk.Level)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	build := func() *fakeSource {
		obs := steadyObs(200, 180)
		for i := 50; i < 60 && i < len(obs); i++ {
			obs[i].LeftEye.X += 40
		}
		return &fakeSource{
			info: VideoInfo{DurationSec: 13.3, FPS: 15, TotalFrames: 200},
			obs:  obs,
		}
	}
	a, err := testEngine().Analyze(context.Background(), build())
	if err != nil {
		t.Fatal(err)
	}
	b, err := testEngine().Analyze(context.Background(), build())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical input produced different results:\n%+v\n%+v", a, b)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	src := &fakeSource{
		info: VideoInfo{DurationSec: 40, FPS: 15, TotalFrames: 600},
		obs:  steadyObs(600, 570),
	}
	res, err := testEngine().Analyze(ctx, src)
	if !errors.Is(err, ErrAnalysisTimeout) {
		t.Fatalf("err = %v, want ErrAnalysisTimeout", err)
	}
	if res != nil {
		t.Fatalf("timed-out run must not return a partial result, got %+v", res)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testEngine().Analyze(ctx, &fakeSource{obs: steadyObs(10, 10)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrAnalysisTimeout) {
		t.Fatalf("cancellation must not be reported as a timeout")
	}
}

func TestAnalyzePropagatesUpstreamFailure(t *testing.T) {
	src := &fakeSource{
		info:    VideoInfo{DurationSec: 10, FPS: 15, TotalFrames: 150},
		obs:     steadyObs(20, 20),
		tailErr: ErrUpstreamUnavailable,
	}
	_, err := testEngine().Analyze(context.Background(), src)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}
