// Package httpapi is the HTTP edge of the server: a gin router, the
// authentication middleware around the gate, and the request handlers
// translating between the wire and the services.
package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/logging"
	"github.com/mkarpenko/filekeeper/internal/server/auth"
	"github.com/mkarpenko/filekeeper/internal/server/config"
	"github.com/mkarpenko/filekeeper/internal/server/services"
)

// Server bundles the dependencies the handlers need.
type Server struct {
	cfg    *config.Config
	logger logging.Logger
	gate   *auth.Gate
	auth   *services.AuthService
	files  *services.FileService
	db     *sql.DB
}

func NewServer(cfg *config.Config, logger logging.Logger, gate *auth.Gate, authSvc *services.AuthService, fileSvc *services.FileService, db *sql.DB) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.With("module", "httpapi"),
		gate:   gate,
		auth:   authSvc,
		files:  fileSvc,
		db:     db,
	}
}

// Routes builds the router with the full middleware chain and route table.
func (s *Server) Routes() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(requestID())
	r.Use(requestLogger(s.logger))
	r.Use(recovery(s.logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", common.RequestIDHeaderName},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/live", s.handleLive)
	r.GET("/healthz", s.handleHealthz)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", s.handleSignup)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/logout", s.handleLogout)
	}

	filesGroup := r.Group("/files")
	filesGroup.Use(requireUser(s.gate, s.logger))
	{
		filesGroup.POST("/upload", s.handleUpload)
		filesGroup.GET("", s.handleListFiles)
		filesGroup.GET("/:id", s.handleGetFile)
		filesGroup.PUT("/:id", s.handleRenameFile)
		filesGroup.DELETE("/:id", s.handleDeleteFile)
		filesGroup.GET("/:id/download", s.handleDownloadURL)
		filesGroup.GET("/:id/thumbnail", s.handleThumbnailURL)
	}

	if s.cfg.Debug {
		r.GET("/debug/config", s.handleDebugConfig)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{
			Code:    "not_found",
			Message: "Not Found: " + c.Request.URL.Path,
		})
	})

	return r
}
