package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pupilla/internal/dao"
	"pupilla/pkg/log"
)

var allowedVideoExts = map[string]bool{
	".webm": true,
	".mp4":  true,
	".avi":  true,
	".mov":  true,
}

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// handleUpload analyzes an uploaded video for asymmetric eye movement
// @Summary Analyze a video for lazy eye indicators
// @Description Runs the eye displacement pipeline over the uploaded video and returns per-event detections plus a risk assessment
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "video file (webm, mp4, avi, mov)"
// @Success 200 {object} dao.UploadResponse "analysis result"
// @Failure 400 {object} dao.ErrorResponse "missing, oversized or undecodable video"
// @Failure 413 {object} dao.ErrorResponse "upload exceeds the size limit"
// @Failure 503 {object} dao.ErrorResponse "detector backend unavailable"
// @Failure 504 {object} dao.ErrorResponse "analysis timed out"
// @Router /upload [post]
func (s *Server) handleUpload(c *gin.Context) {
	maxBytes := s.conf.MaxUploadBytes()
	if c.Request.ContentLength > maxBytes {
		s.writeErrorStatus(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("video exceeds the %dMB limit", s.conf.MaxUploadMB))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		s.writeErrorStatus(c, http.StatusBadRequest, errors.New("no video file provided"))
		return
	}
	if fileHeader.Size > maxBytes {
		s.writeErrorStatus(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("video exceeds the %dMB limit", s.conf.MaxUploadMB))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedVideoExts[ext] {
		s.writeErrorStatus(c, http.StatusBadRequest,
			fmt.Errorf("unsupported video format %q, use webm, mp4, avi or mov", ext))
		return
	}

	// The decoder wants a file path; the upload lives in a temp file for
	// exactly the duration of this request.
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.conf.AnalysisTimeout())
	defer cancel()

	start := time.Now()
	result, err := s.analyzer.AnalyzeVideo(ctx, tmpPath)
	if err != nil {
		s.writeError(c, err)
		return
	}
	elapsed := time.Since(start).Seconds()

	log.GetLogger(c.Request.Context()).Infof("analyzed %s in %.1fs: %d events, risk %s",
		fileHeader.Filename, elapsed, len(result.Events), result.Risk.Level)

	c.JSON(http.StatusOK, dao.UploadResponse{
		Success:               true,
		Filename:              fileHeader.Filename,
		ProcessingTimeSeconds: math.Round(elapsed*10) / 10,
		Analysis:              dao.FromResult(result),
		Message:               "Analysis complete",
	})
}

// handleDetect checks a flash photo for an abnormal pupil reflex
// @Summary Check a flash photo for leukocoria
// @Description Examines every locatable eye for a white or yellow-white pupil reflex; result=true means a normal reflex
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "flash photo (jpg, jpeg, png, webp)"
// @Success 200 {object} dao.DetectResponse "reflex check result"
// @Failure 400 {object} dao.ErrorResponse "missing or undecodable photo"
// @Failure 413 {object} dao.ErrorResponse "upload exceeds the size limit"
// @Router /detect [post]
func (s *Server) handleDetect(c *gin.Context) {
	maxBytes := s.conf.MaxUploadBytes()
	if c.Request.ContentLength > maxBytes {
		s.writeErrorStatus(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("photo exceeds the %dMB limit", s.conf.MaxUploadMB))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// Older clients send the photo under "file".
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		s.writeErrorStatus(c, http.StatusBadRequest, errors.New("no photo provided"))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedPhotoExts[ext] {
		s.writeErrorStatus(c, http.StatusBadRequest,
			fmt.Errorf("unsupported photo format %q, use jpg, jpeg, png or webp", ext))
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.conf.AnalysisTimeout())
	defer cancel()

	result, err := s.analyzer.AnalyzePhoto(ctx, data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dao.FromReflexResult(result))
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
