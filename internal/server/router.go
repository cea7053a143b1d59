package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.GET("/test", s.handleTest)
	router.GET("/ping", s.handlePing)

	router.POST("/upload", s.handleUpload)
	router.POST("/detect", s.handleDetect)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return router
}

// The browser client is served from another origin, so the API answers
// cross-origin requests directly.
func (s *Server) corsConfig() cors.Config {
	conf := cors.DefaultConfig()
	origins := s.conf.AllowOrigins
	if len(origins) == 1 && origins[0] == "*" {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	conf.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	conf.AllowHeaders = append(conf.AllowHeaders, "X-Request-Id")
	return conf
}
