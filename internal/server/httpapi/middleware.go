package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/logging"
	"github.com/mkarpenko/filekeeper/internal/server/auth"
	"github.com/mkarpenko/filekeeper/internal/server/models"
)

const (
	ctxUserKey      = "current_user"
	ctxRequestIDKey = "request_id"
)

// requestID honors an incoming X-Request-Id or assigns a fresh one, and
// echoes it back so clients can quote it when reporting failures.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, id)
		c.Writer.Header().Set(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
			"request_id", c.GetString(ctxRequestIDKey),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			args = append(args, "errors", errs)
		}

		switch {
		case status >= 500:
			logger.Error(c.Request.Context(), "request", args...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "request", args...)
		default:
			logger.Info(c.Request.Context(), "request", args...)
		}
	}
}

// recovery is the outer error boundary: a panic is logged with the request
// id and answered with a generic 500 that quotes the same id, never the
// panic value.
func recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				id := c.GetString(ctxRequestIDKey)
				logger.Error(c.Request.Context(), "panic recovered",
					"request_id", id, "panic", fmt.Sprintf("%v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, detailResponse{
					Detail: "Internal Server Error! Request ID: " + id,
				})
			}
		}()
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header, or "" when
// the header is absent or not a Bearer scheme.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

func cookieToken(c *gin.Context) string {
	v, err := c.Cookie(common.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return v
}

// requireUser runs the authentication gate over the double-submitted token.
// Every refusal is the same uniform 401 to the client, while the specific
// code goes to the log.
func requireUser(gate *auth.Gate, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, rejection, err := gate.Authenticate(c.Request.Context(), bearerToken(c), cookieToken(c))
		if err != nil {
			c.Error(err)
			abortInternal(c)
			return
		}
		if rejection != nil {
			logger.Warn(c.Request.Context(), "request rejected",
				"code", string(rejection.Code),
				"request_id", c.GetString(ctxRequestIDKey),
				"path", c.Request.URL.Path)
			abortUnauthorized(c)
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	u, _ := c.MustGet(ctxUserKey).(*models.User)
	return u
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
		Code:    "not_authenticated",
		Message: "Not authenticated",
	})
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, detailResponse{
		Detail: "Internal Server Error! Request ID: " + c.GetString(ctxRequestIDKey),
	})
}
