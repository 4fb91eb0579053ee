package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleHealthz reports readiness: the process is only useful when the
// database answers.
func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Code:    "database_unavailable",
			Message: "Database is unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDebugConfig is only routed when the debug flag is set. Secrets are
// redacted even then.
func (s *Server) handleDebugConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"http_addr":             s.cfg.HTTPAddr,
		"jwt_algorithm":         s.cfg.JWTAlgorithm,
		"jwt_secret_key":        "[redacted]",
		"access_token_ttl":      s.cfg.AccessTokenTTL.String(),
		"database_url":          "[redacted]",
		"s3_base_endpoint":      s.cfg.S3BaseEndpoint,
		"s3_region":             s.cfg.S3Region,
		"upload_bucket":         s.cfg.UploadBucket,
		"thumbnail_bucket":      s.cfg.ThumbnailBucket,
		"max_upload_size_bytes": s.cfg.MaxUploadSizeBytes,
		"allow_origins":         s.cfg.AllowOrigins,
		"debug":                 s.cfg.Debug,
	})
}
