package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pupilla/internal/config"
	"pupilla/pkg/log"
)

// Engine runs the displacement pipeline over one observation stream. It is
// stateless between runs; every Analyze call works on its own buffers, so a
// single Engine serves concurrent requests.
type Engine struct {
	cfg config.EngineConfig
}

func New(cfg config.EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze drains src and returns the complete analysis result. The context
// is checked between observations; hitting the deadline mid-run discards all
// partial state and returns ErrAnalysisTimeout.
func (e *Engine) Analyze(ctx context.Context, src ObservationSource) (*Result, error) {
	logger := log.WithComponent(ctx, "engine")

	builder := newDisplacementBuilder(e.cfg.BaselineWindow)
	detector := newEventDetector(e.cfg.EnterThreshold, e.cfg.ExitThreshold,
		e.cfg.MinSustainFrames, e.cfg.MinReleaseFrames)

	var analyzed, withFace int
	for {
		if err := ctx.Err(); err != nil {
			return nil, runAborted(err)
		}

		obs, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, runAborted(ctxErr)
			}
			return nil, err
		}

		analyzed++
		if !obs.FaceFound {
			continue
		}
		withFace++
		detector.push(builder.push(obs))
	}

	events := detector.finish()

	var rate float64
	if analyzed > 0 {
		rate = float64(withFace) / float64(analyzed) * 100
	}

	risk := assessRisk(riskParams{
		minCoverage:        e.cfg.MinCoveragePercent,
		highEventCount:     e.cfg.HighEventCount,
		severeAsymmetry:    e.cfg.SevereAsymmetry,
		highConfidenceRate: e.cfg.HighConfidenceRate,
	}, len(events), peakAsymmetry(events), rate)

	logger.Debugf("analysis done: %d frames, %d with face, %d events, risk %s",
		analyzed, withFace, len(events), risk.Level)

	return &Result{
		Video:             src.Info(),
		FramesAnalyzed:    analyzed,
		FramesWithFace:    withFace,
		FaceDetectionRate: rate,
		Events:            events,
		Risk:              risk,
	}, nil
}

func runAborted(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrAnalysisTimeout, ctxErr)
	}
	return ctxErr
}
