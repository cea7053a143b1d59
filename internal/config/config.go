package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
)

// SamplerConfig bounds how much of an uploaded video the pipeline reads.
type SamplerConfig struct {
	MaxFPS    float64 `yaml:"maxFPS" validate:"gt=0"`
	MaxFrames int     `yaml:"maxFrames" validate:"gt=0"`
}

// EngineConfig carries every displacement-pipeline tunable. The engine only
// ever sees these values through its constructor, never through globals.
type EngineConfig struct {
	BaselineWindow     int     `yaml:"baselineWindow" validate:"gte=1"`
	EnterThreshold     float64 `yaml:"enterThreshold" validate:"gt=0"`
	ExitThreshold      float64 `yaml:"exitThreshold" validate:"gt=0,ltefield=EnterThreshold"`
	MinSustainFrames   int     `yaml:"minSustainFrames" validate:"gte=1"`
	MinReleaseFrames   int     `yaml:"minReleaseFrames" validate:"gte=1"`
	MinCoveragePercent float64 `yaml:"minCoveragePercent" validate:"gte=0,lte=100"`
	HighEventCount     int     `yaml:"highEventCount" validate:"gte=1"`
	SevereAsymmetry    float64 `yaml:"severeAsymmetry" validate:"gt=0"`
	HighConfidenceRate float64 `yaml:"highConfidenceRate" validate:"gte=0,lte=100"`
}

type CascadeConfig struct {
	FaceCascadeFile string `yaml:"faceCascadeFile"`
	EyeCascadeFile  string `yaml:"eyeCascadeFile"`
}

type TritonConfig struct {
	ServerAddr   string `yaml:"serverAddr"`
	ModelName    string `yaml:"modelName"`
	ModelVersion string `yaml:"modelVersion"`
}

// DetectorConfig selects the eye locator backend. "cascade" runs Haar
// cascades in-process, "triton" calls a remote inference server.
type DetectorConfig struct {
	Backend              string        `yaml:"backend" validate:"oneof=cascade triton"`
	Workers              int           `yaml:"workers" validate:"gte=1"`
	UpstreamFailureLimit int           `yaml:"upstreamFailureLimit" validate:"gte=1"`
	Cascade              CascadeConfig `yaml:"cascade"`
	Triton               TritonConfig  `yaml:"triton"`
}

type Config struct {
	Addr               string         `yaml:"addr" validate:"required"`
	SSLCert            string         `yaml:"sslCert"`
	SSLKey             string         `yaml:"sslKey"`
	AllowOrigins       []string       `yaml:"allowOrigins"`
	MaxUploadMB        int64          `yaml:"maxUploadMB" validate:"gt=0"`
	AnalysisTimeoutSec int            `yaml:"analysisTimeoutSec" validate:"gt=0"`
	Sampler            SamplerConfig  `yaml:"sampler"`
	Engine             EngineConfig   `yaml:"engine"`
	Detector           DetectorConfig `yaml:"detector"`
}

func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutSec) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func DefaultConfig() *Config {
	cfg := &Config{
		Addr:               "0.0.0.0:8080",
		AllowOrigins:       []string{"*"},
		MaxUploadMB:        50,
		AnalysisTimeoutSec: 300,
		Sampler: SamplerConfig{
			MaxFPS:    15,
			MaxFrames: 900,
		},
		Engine: EngineConfig{
			BaselineWindow:     15,
			EnterThreshold:     25.0,
			ExitThreshold:      15.0,
			MinSustainFrames:   3,
			MinReleaseFrames:   2,
			MinCoveragePercent: 50.0,
			HighEventCount:     3,
			SevereAsymmetry:    50.0,
			HighConfidenceRate: 70.0,
		},
		Detector: DetectorConfig{
			Backend:              "cascade",
			Workers:              1,
			UpstreamFailureLimit: 30,
			Triton: TritonConfig{
				ServerAddr: "localhost:8001",
				ModelName:  "eye_landmark",
			},
		},
	}

	dataDir := os.Getenv("PUPILLA_DATA")
	if dataDir != "" {
		cfg.Detector.Cascade.FaceCascadeFile = path.Join(dataDir, "haarcascade_frontalface_default.xml")
		cfg.Detector.Cascade.EyeCascadeFile = path.Join(dataDir, "haarcascade_eye.xml")
	} else {
		cfg.Detector.Cascade.FaceCascadeFile = "./models/haarcascade_frontalface_default.xml"
		cfg.Detector.Cascade.EyeCascadeFile = "./models/haarcascade_eye.xml"
	}

	return cfg
}
