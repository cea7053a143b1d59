package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pupilla/internal/version"
)

// handleIndex returns the service card
// @Summary Service description
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{} "service card"
// @Router / [get]
func (s *Server) handleIndex(c *gin.Context) {
	eng := s.conf.Engine
	c.JSON(http.StatusOK, gin.H{
		"service": "pupilla",
		"version": version.VERSION,
		"status":  "running",
		"algorithm": gin.H{
			"summary":             "per-eye displacement against a rolling median baseline, hysteresis event detection, rule-based risk aggregation",
			"baseline_window":     eng.BaselineWindow,
			"enter_threshold_px":  eng.EnterThreshold,
			"exit_threshold_px":   eng.ExitThreshold,
			"min_sustain_frames":  eng.MinSustainFrames,
			"min_release_frames":  eng.MinReleaseFrames,
			"min_coverage_pct":    eng.MinCoveragePercent,
			"severe_asymmetry_px": eng.SevereAsymmetry,
		},
		"endpoints": gin.H{
			"POST /upload": "analyze a video for asymmetric eye movement",
			"POST /detect": "check a flash photo for an abnormal pupil reflex",
			"GET /health":  "service health",
			"GET /test":    "detector readiness probe",
			"GET /ping":    "liveness",
		},
	})
}

// handleHealth returns service health
// @Summary Health check
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{} "health status"
// @Router /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"detector":  s.analyzer.Backend(),
		"version":   version.VERSION,
	})
}

// handleTest probes the detector backend
// @Summary Detector readiness probe
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{} "detector ready"
// @Failure 503 {object} dao.ErrorResponse "detector backend unavailable"
// @Router /test [get]
func (s *Server) handleTest(c *gin.Context) {
	if err := s.analyzer.Ready(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "detector ready",
		"backend": s.analyzer.Backend(),
	})
}

// handlePing answers pong
// @Summary Liveness probe
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{} "pong"
// @Router /ping [get]
func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
