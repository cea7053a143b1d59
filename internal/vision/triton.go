package vision

import (
	"context"
	"fmt"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"gocv.io/x/gocv"

	"pupilla/internal/config"
	"pupilla/internal/engine"
)

// minLandmarkConfidence is the score below which the model's output is
// treated as "no face in frame".
const minLandmarkConfidence = 0.5

// TritonDetector locates eyes with a landmark model served by a Triton
// inference server. The model takes one BGR frame and returns an EYES
// tensor of [left_x, left_y, right_x, right_y, confidence].
type TritonDetector struct {
	cli          base.Client
	modelName    string
	modelVersion string
}

func NewTritonDetector(cfg config.TritonConfig) (*TritonDetector, error) {
	cli, err := tritonGrpc.NewClient(
		cfg.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, fmt.Errorf("triton client: %w", err)
	}
	version := cfg.ModelVersion
	if version == "" {
		version = "1"
	}
	return &TritonDetector{
		cli:          cli,
		modelName:    cfg.ModelName,
		modelVersion: version,
	}, nil
}

// Ready runs the live/ready/model-ready probes. Any failure maps to the
// upstream-unavailable class so callers can refuse work before decoding an
// entire video.
func (d *TritonDetector) Ready(ctx context.Context) error {
	if isLive, err := d.cli.IsServerLive(ctx, nil); err != nil {
		return fmt.Errorf("%w: liveness probe: %v", engine.ErrUpstreamUnavailable, err)
	} else if !isLive {
		return fmt.Errorf("%w: server is not live", engine.ErrUpstreamUnavailable)
	}

	if isReady, err := d.cli.IsServerReady(ctx, nil); err != nil {
		return fmt.Errorf("%w: readiness probe: %v", engine.ErrUpstreamUnavailable, err)
	} else if !isReady {
		return fmt.Errorf("%w: server is not ready", engine.ErrUpstreamUnavailable)
	}

	if isReady, err := d.cli.IsModelReady(ctx, d.modelName, d.modelVersion, nil); err != nil {
		return fmt.Errorf("%w: model probe: %v", engine.ErrUpstreamUnavailable, err)
	} else if !isReady {
		return fmt.Errorf("%w: model %s is not ready", engine.ErrUpstreamUnavailable, d.modelName)
	}

	return nil
}

func (d *TritonDetector) DetectEyes(ctx context.Context, frame gocv.Mat) (*EyePair, error) {
	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES",
		[]int64{int64(frame.Rows()), int64(frame.Cols()), 3}, nil)
	if err := frameInput.SetData(frame.ToBytes(), true); err != nil {
		return nil, fmt.Errorf("set FRAME input data: %v", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("EYES", map[string]any{"binary_data": false}),
	}

	response, err := d.cli.Infer(
		ctx,
		d.modelName,
		d.modelVersion,
		[]base.InferInput{frameInput},
		outputs,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %v", err)
	}

	eyes, err := response.AsFloat32Slice("EYES")
	if err != nil {
		return nil, fmt.Errorf("get EYES output: %v", err)
	}
	return parseEyeTensor(eyes), nil
}

func (d *TritonDetector) Close() error { return nil }

// parseEyeTensor turns the raw EYES output into an eye pair, or nil when
// the model saw no face.
func parseEyeTensor(vals []float32) *EyePair {
	if len(vals) < 5 {
		return nil
	}
	confidence := float64(vals[4])
	if confidence < minLandmarkConfidence {
		return nil
	}
	if vals[0] < 0 || vals[1] < 0 || vals[2] < 0 || vals[3] < 0 {
		return nil
	}
	a := engine.Point{X: float64(vals[0]), Y: float64(vals[1])}
	b := engine.Point{X: float64(vals[2]), Y: float64(vals[3])}
	left, right := orderPair(a, b)
	return &EyePair{Left: left, Right: right, Confidence: confidence}
}
