package vision

import (
	"image"
	"math"
	"strings"
	"testing"

	"pupilla/internal/engine"
)

func TestSampleStride(t *testing.T) {
	cases := []struct {
		name   string
		fps    float64
		maxFPS float64
		want   int
	}{
		{"below cap", 15, 15, 1},
		{"double", 30, 15, 2},
		{"sixty to fifteen", 60, 15, 4},
		{"uneven rounds", 25, 15, 2},
		{"no cap", 120, 0, 1},
		{"just above", 16, 15, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sampleStride(tc.fps, tc.maxFPS); got != tc.want {
				t.Errorf("sampleStride(%v, %v) = %d, want %d", tc.fps, tc.maxFPS, got, tc.want)
			}
		})
	}
}

func TestOrderPair(t *testing.T) {
	a := engine.Point{X: 200, Y: 90}
	b := engine.Point{X: 110, Y: 95}
	left, right := orderPair(a, b)
	if left.X != 110 || right.X != 200 {
		t.Errorf("orderPair = (%v, %v), want left at x=110", left, right)
	}
	left, right = orderPair(b, a)
	if left.X != 110 || right.X != 200 {
		t.Errorf("orderPair should be argument-order independent")
	}
}

func TestParseEyeTensor(t *testing.T) {
	cases := []struct {
		name string
		vals []float32
		want *EyePair
	}{
		{"normal", []float32{240, 120, 160, 124, 0.75},
			&EyePair{Left: engine.Point{X: 160, Y: 124}, Right: engine.Point{X: 240, Y: 120}, Confidence: 0.75}},
		{"low confidence means no face", []float32{240, 120, 160, 124, 0.3}, nil},
		{"negative sentinel means no face", []float32{-1, -1, -1, -1, 0.99}, nil},
		{"short tensor", []float32{240, 120}, nil},
		{"empty", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseEyeTensor(tc.vals)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("parseEyeTensor = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("parseEyeTensor = nil, want pair")
			}
			if *got != *tc.want {
				t.Errorf("parseEyeTensor = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestIsReflex(t *testing.T) {
	cases := []struct {
		name       string
		saturation float64
		value      float64
		want       bool
	}{
		{"bright white reflex", 10, 220, true},
		{"dark pupil", 10, 40, false},
		{"saturated red eye", 180, 200, false},
		{"saturation at cutoff", 50, 200, false},
		{"value at cutoff", 10, 120, false},
		{"just inside both", 49, 121, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isReflex(tc.saturation, tc.value); got != tc.want {
				t.Errorf("isReflex(%v, %v) = %v, want %v", tc.saturation, tc.value, got, tc.want)
			}
		})
	}
}

func TestReflexScoreBounds(t *testing.T) {
	for _, sv := range [][2]float64{{0, 255}, {49, 121}, {10, 200}, {45, 130}} {
		score := reflexScore(sv[0], sv[1])
		if score < 0 || score > 1 {
			t.Errorf("reflexScore(%v, %v) = %v, out of [0,1]", sv[0], sv[1], score)
		}
	}
	if reflexScore(0, 255) != 1 {
		t.Errorf("perfect white reflex should score 1, got %v", reflexScore(0, 255))
	}
	strong := reflexScore(5, 240)
	weak := reflexScore(45, 130)
	if strong <= weak {
		t.Errorf("stronger reflex should score higher: %v vs %v", strong, weak)
	}
}

func TestBuildReflexResult(t *testing.T) {
	t.Run("no eyes", func(t *testing.T) {
		r := buildReflexResult(0, 0, 0)
		if !r.Normal {
			t.Error("no-eyes result must not claim an abnormal reflex")
		}
		if r.Confidence != 0 {
			t.Errorf("confidence = %v, want 0 when nothing was assessed", r.Confidence)
		}
		if !strings.Contains(r.Message, "not assessed") {
			t.Errorf("message %q should say the reflex was not assessed", r.Message)
		}
	})
	t.Run("abnormal", func(t *testing.T) {
		r := buildReflexResult(2, 1, 0.8)
		if r.Normal {
			t.Error("abnormal reflex reported as normal")
		}
		if r.Confidence < 0.5 || r.Confidence > 0.95 {
			t.Errorf("confidence = %v, want within [0.5, 0.95]", r.Confidence)
		}
		if r.EyesExamined != 2 {
			t.Errorf("eyes examined = %d, want 2", r.EyesExamined)
		}
		if !strings.Contains(r.Message, "1 of 2") {
			t.Errorf("message %q should count affected eyes", r.Message)
		}
	})
	t.Run("normal confidence grows with eyes", func(t *testing.T) {
		one := buildReflexResult(1, 0, 0)
		two := buildReflexResult(2, 0, 0)
		if !one.Normal || !two.Normal {
			t.Fatal("clean photos must be normal")
		}
		if two.Confidence <= one.Confidence {
			t.Errorf("confidence should grow with evidence: %v vs %v", one.Confidence, two.Confidence)
		}
		many := buildReflexResult(10, 0, 0)
		if many.Confidence > 0.95 {
			t.Errorf("confidence = %v, want capped at 0.95", many.Confidence)
		}
	})
}

func TestRectCenter(t *testing.T) {
	face := image.Rect(100, 50, 300, 250)
	eye := image.Rect(20, 30, 60, 70)
	c := rectCenter(eye, face)
	if c.X != 140 || c.Y != 100 {
		t.Errorf("rectCenter = %+v, want (140, 100)", c)
	}
}

func TestLargestRect(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(0, 0, 50, 40),
		image.Rect(0, 0, 30, 30),
	}
	if got := largestRect(rects); got != rects[1] {
		t.Errorf("largestRect = %v, want %v", got, rects[1])
	}
}

func TestAbnormalConfidenceTracksScore(t *testing.T) {
	low := buildReflexResult(2, 1, 0.1)
	high := buildReflexResult(2, 1, 0.9)
	if high.Confidence <= low.Confidence {
		t.Errorf("confidence should track reflex strength: %v vs %v", low.Confidence, high.Confidence)
	}
	if math.Abs(high.Confidence-(0.5+0.45*0.9)) > 1e-9 {
		t.Errorf("confidence = %v, want %v", high.Confidence, 0.5+0.45*0.9)
	}
}
