package vision

import (
	"context"
	"fmt"

	"pupilla/internal/config"
	"pupilla/internal/engine"
)

// Analyzer bundles the detector backend, the displacement engine and the
// reflex analyzer behind the two operations the service exposes. One
// Analyzer serves all requests; per-request state lives in the sources it
// opens.
type Analyzer struct {
	cfg    *config.Config
	eng    *engine.Engine
	det    Detector
	reflex *ReflexAnalyzer
}

func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	var det Detector
	var err error
	switch cfg.Detector.Backend {
	case "triton":
		det, err = NewTritonDetector(cfg.Detector.Triton)
	case "cascade":
		det, err = NewCascadeDetector(cfg.Detector.Cascade)
	default:
		err = fmt.Errorf("unknown detector backend %q", cfg.Detector.Backend)
	}
	if err != nil {
		return nil, err
	}

	// The reflex check is always local; a landmark model has no pupil
	// color output.
	reflex, err := NewReflexAnalyzer(cfg.Detector.Cascade)
	if err != nil {
		det.Close()
		return nil, err
	}

	return &Analyzer{
		cfg:    cfg,
		eng:    engine.New(cfg.Engine),
		det:    det,
		reflex: reflex,
	}, nil
}

// AnalyzeVideo runs the full displacement pipeline over a video file. The
// detector readiness probe runs first so a dead backend fails fast instead
// of surfacing as frame-by-frame noise.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, path string) (*engine.Result, error) {
	if err := a.det.Ready(ctx); err != nil {
		return nil, err
	}

	src, err := openVideoSource(path, a.cfg.Sampler)
	if err != nil {
		return nil, err
	}
	obsSrc := newObservationSource(ctx, src, a.det,
		a.cfg.Detector.Workers, a.cfg.Detector.UpstreamFailureLimit)
	defer obsSrc.Close()

	return a.eng.Analyze(ctx, obsSrc)
}

func (a *Analyzer) AnalyzePhoto(ctx context.Context, data []byte) (*engine.ReflexResult, error) {
	return a.reflex.AnalyzePhoto(ctx, data)
}

func (a *Analyzer) Ready(ctx context.Context) error {
	return a.det.Ready(ctx)
}

func (a *Analyzer) Backend() string {
	return a.cfg.Detector.Backend
}

func (a *Analyzer) Close() error {
	err := a.det.Close()
	if rerr := a.reflex.Close(); err == nil {
		err = rerr
	}
	return err
}
