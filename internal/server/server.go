package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "pupilla/docs"
	"pupilla/internal/config"
	"pupilla/internal/dao"
	"pupilla/internal/engine"
	"pupilla/pkg/log"
)

// Analyzer is everything the HTTP surface needs from the vision layer. The
// server never touches frames or models itself.
type Analyzer interface {
	AnalyzeVideo(ctx context.Context, path string) (*engine.Result, error)
	AnalyzePhoto(ctx context.Context, data []byte) (*engine.ReflexResult, error)
	Ready(ctx context.Context) error
	Backend() string
}

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	analyzer   Analyzer
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, analyzer Analyzer) (*Server, error) {
	s := &Server{
		conf:     conf,
		analyzer: analyzer,
		logger:   log.GetLogger(ctx),
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(log.HttpXRequestId, requestId)
		c.Set(log.CtxRequestId, requestId)
		ctx := context.WithValue(c.Request.Context(), log.CtxRequestId, requestId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logrus.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		logrus.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		logrus.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	err := s.httpServer.Shutdown(context.Background())
	if err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
}

// writeError maps the failure taxonomy onto HTTP statuses: undecodable
// input is the client's fault, an expired analysis deadline is a gateway
// timeout, a dead detector backend is service-unavailable. Anything else is
// an internal error.
func (s *Server) writeError(c *gin.Context, err error) {
	s.writeErrorStatus(c, statusFor(err), err)
}

func (s *Server) writeErrorStatus(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.GetLogger(c.Request.Context()).WithError(err).Error("request failed")
	}
	c.JSON(code, dao.ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case engine.IsDecodeError(err):
		return http.StatusBadRequest
	case goerrors.Is(err, engine.ErrAnalysisTimeout):
		return http.StatusGatewayTimeout
	case goerrors.Is(err, engine.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
