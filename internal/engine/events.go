package engine

import "fmt"

// eventDetector is a two-state hysteresis machine over the asymmetry signal
// |left - right|. Entry requires the asymmetry to stay strictly above the
// enter threshold for minSustain consecutive samples; exit requires it to
// stay strictly below the exit threshold for minRelease consecutive samples.
// Samples between the two thresholds extend whichever state is current, so
// a signal hovering around one threshold cannot flap.
type eventDetector struct {
	enter      float64
	exit       float64
	minSustain int
	minRelease int

	inEvent bool
	sustain int
	release int

	onset    float64
	peak     DisplacementSample
	peakAsym float64

	events []DetectionEvent
}

func newEventDetector(enter, exit float64, minSustain, minRelease int) *eventDetector {
	if minSustain < 1 {
		minSustain = 1
	}
	if minRelease < 1 {
		minRelease = 1
	}
	return &eventDetector{
		enter:      enter,
		exit:       exit,
		minSustain: minSustain,
		minRelease: minRelease,
	}
}

func (d *eventDetector) push(s DisplacementSample) {
	asym := s.Asymmetry()
	if d.inEvent {
		if asym > d.peakAsym {
			d.peakAsym = asym
			d.peak = s
		}
		if asym < d.exit {
			d.release++
			if d.release >= d.minRelease {
				d.close()
			}
		} else {
			d.release = 0
		}
		return
	}

	if asym > d.enter {
		if d.sustain == 0 {
			d.onset = s.Timestamp
			d.peak = s
			d.peakAsym = asym
		} else if asym > d.peakAsym {
			d.peakAsym = asym
			d.peak = s
		}
		d.sustain++
		if d.sustain >= d.minSustain {
			d.inEvent = true
			d.release = 0
		}
	} else {
		d.sustain = 0
	}
}

// finish closes an event still open at end of stream with its peak so far,
// then returns all detected events in onset order. A candidate run shorter
// than minSustain is discarded.
func (d *eventDetector) finish() []DetectionEvent {
	if d.inEvent {
		d.close()
	}
	return d.events
}

func (d *eventDetector) close() {
	d.events = append(d.events, DetectionEvent{
		Timestamp:         d.onset,
		LeftDisplacement:  d.peak.Left,
		RightDisplacement: d.peak.Right,
		Message:           eventMessage(d.peak),
	})
	d.inEvent = false
	d.sustain = 0
	d.release = 0
	d.peakAsym = 0
}

func eventMessage(peak DisplacementSample) string {
	side := "left"
	if peak.Right > peak.Left {
		side = "right"
	}
	return fmt.Sprintf("%s eye displacement larger by %.1fpx (left %.1fpx, right %.1fpx)",
		side, peak.Asymmetry(), peak.Left, peak.Right)
}
