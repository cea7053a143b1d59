package vision

import (
	"math"

	"gocv.io/x/gocv"

	"pupilla/internal/config"
	"pupilla/internal/engine"
)

// fallbackFPS is used when the container reports no frame rate; timestamps
// stay usable instead of collapsing to zero.
const fallbackFPS = 30.0

// videoSource decodes a video file and yields sampled frames. Sampling is
// stride-based: a source faster than maxFPS keeps every n-th frame so the
// analyzed clip is spread evenly, and maxFrames caps the total regardless
// of length. The caller owns every returned Mat.
type videoSource struct {
	cap       *gocv.VideoCapture
	info      engine.VideoInfo
	stride    int
	maxFrames int

	rawIndex int
	emitted  int
}

func openVideoSource(path string, cfg config.SamplerConfig) (*videoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, &engine.DecodeError{Reason: "failed to open video", Err: err}
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 || math.IsNaN(fps) {
		fps = fallbackFPS
	}
	total := int(capture.Get(gocv.VideoCaptureFrameCount))
	if total < 0 {
		total = 0
	}
	var duration float64
	if total > 0 {
		duration = float64(total) / fps
	}

	return &videoSource{
		cap: capture,
		info: engine.VideoInfo{
			DurationSec: duration,
			FPS:         fps,
			TotalFrames: total,
		},
		stride:    sampleStride(fps, cfg.MaxFPS),
		maxFrames: cfg.MaxFrames,
	}, nil
}

func (s *videoSource) Info() engine.VideoInfo { return s.info }

type sampledFrame struct {
	index     int
	timestamp float64
	mat       gocv.Mat
}

// next returns the next sampled frame, or ok=false at end of stream. A
// container that never yields a single decodable frame is reported as a
// decode failure, not an empty result.
func (s *videoSource) next() (sampledFrame, bool, error) {
	for {
		if s.emitted >= s.maxFrames {
			return sampledFrame{}, false, nil
		}

		frame := gocv.NewMat()
		if ok := s.cap.Read(&frame); !ok {
			frame.Close()
			if s.rawIndex == 0 {
				return sampledFrame{}, false, engine.NewDecodeError("no decodable frames in video")
			}
			return sampledFrame{}, false, nil
		}

		index := s.rawIndex
		s.rawIndex++

		if frame.Empty() {
			frame.Close()
			continue
		}
		if s.stride > 1 && index%s.stride != 0 {
			frame.Close()
			continue
		}

		s.emitted++
		return sampledFrame{
			index:     index,
			timestamp: float64(index) / s.info.FPS,
			mat:       frame,
		}, true, nil
	}
}

func (s *videoSource) Close() error {
	return s.cap.Close()
}

func sampleStride(fps, maxFPS float64) int {
	if maxFPS <= 0 || fps <= maxFPS {
		return 1
	}
	stride := int(math.Round(fps / maxFPS))
	if stride < 1 {
		stride = 1
	}
	return stride
}
