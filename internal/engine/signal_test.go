package engine

import (
	"math"
	"testing"
)

func faceObs(ts float64, left, right Point) FrameObservation {
	return FrameObservation{
		Timestamp: ts,
		FaceFound: true,
		LeftEye:   left,
		RightEye:  right,
	}
}

func TestFirstSampleHasZeroDisplacement(t *testing.T) {
	b := newDisplacementBuilder(15)
	s := b.push(faceObs(0, Point{X: 120, Y: 80}, Point{X: 200, Y: 80}))
	if s.Left != 0 || s.Right != 0 {
		t.Fatalf("first sample displacement = (%v, %v), want (0, 0)", s.Left, s.Right)
	}
}

func TestStationaryEyesStayAtZero(t *testing.T) {
	b := newDisplacementBuilder(15)
	left, right := Point{X: 100, Y: 100}, Point{X: 180, Y: 100}
	for i := 0; i < 30; i++ {
		s := b.push(faceObs(float64(i)/15, left, right))
		if s.Left != 0 || s.Right != 0 {
			t.Fatalf("sample %d: displacement = (%v, %v), want (0, 0)", i, s.Left, s.Right)
		}
	}
}

func TestJumpMeasuredAgainstRollingMedian(t *testing.T) {
	b := newDisplacementBuilder(15)
	right := Point{X: 200, Y: 100}
	for i := 0; i < 20; i++ {
		b.push(faceObs(float64(i)/15, Point{X: 100, Y: 100}, right))
	}
	// Left eye jumps 40px right; the window median still sits at the old
	// position, so the displacement equals the jump size.
	s := b.push(faceObs(20.0/15, Point{X: 140, Y: 100}, right))
	if math.Abs(s.Left-40) > 1e-9 {
		t.Errorf("left displacement after jump = %v, want 40", s.Left)
	}
	if s.Right != 0 {
		t.Errorf("right displacement = %v, want 0", s.Right)
	}
}

func TestBaselineFollowsSustainedShift(t *testing.T) {
	b := newDisplacementBuilder(5)
	right := Point{X: 200, Y: 100}
	for i := 0; i < 10; i++ {
		b.push(faceObs(float64(i), Point{X: 100, Y: 100}, right))
	}
	var last DisplacementSample
	for i := 10; i < 20; i++ {
		last = b.push(faceObs(float64(i), Point{X: 140, Y: 100}, right))
	}
	// After a full window at the new position the median has moved there.
	if last.Left != 0 {
		t.Errorf("left displacement after baseline caught up = %v, want 0", last.Left)
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want float64
	}{
		{"single", []float64{3}, 3},
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"unsorted input untouched", []float64{9, 7, 8}, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := make([]float64, len(tc.in))
			copy(in, tc.in)
			if got := median(in); got != tc.want {
				t.Errorf("median(%v) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range in {
				if in[i] != tc.in[i] {
					t.Errorf("median mutated its input: %v", in)
					break
				}
			}
		})
	}
}

func TestDisplacementIsEuclidean(t *testing.T) {
	b := newDisplacementBuilder(15)
	right := Point{X: 200, Y: 100}
	for i := 0; i < 10; i++ {
		b.push(faceObs(float64(i), Point{X: 100, Y: 100}, right))
	}
	s := b.push(faceObs(10, Point{X: 103, Y: 104}, right))
	if math.Abs(s.Left-5) > 1e-9 {
		t.Errorf("left displacement = %v, want 5 (3-4-5 triangle)", s.Left)
	}
}
