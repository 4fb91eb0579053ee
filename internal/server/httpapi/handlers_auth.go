package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarpenko/filekeeper/internal/common"
)

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "validation_error",
			Message: bindingMessage(err),
		})
		return
	}

	user, err := s.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			c.JSON(http.StatusBadRequest, errorResponse{
				Code:    "email_already_registered",
				Message: "Email already registered",
			})
			return
		}
		c.Error(err)
		abortInternal(c)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "validation_error",
			Message: bindingMessage(err),
		})
		return
	}

	token, _, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, errorResponse{
				Code:    "invalid_credentials",
				Message: "Incorrect email or password",
			})
			return
		}
		c.Error(err)
		abortInternal(c)
		return
	}

	s.setAuthCookie(c, token, int(s.auth.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleLogout accepts the token from either channel: the point is to
// revoke whatever session is identifiable, so requiring the full
// double-submission would only keep dying sessions alive.
func (s *Server) handleLogout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		token = cookieToken(c)
	}
	if token == "" {
		abortUnauthorized(c)
		return
	}

	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			abortUnauthorized(c)
			return
		}
		c.Error(err)
		abortInternal(c)
		return
	}

	s.setAuthCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (s *Server) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenCookieName, token, maxAge, "/", "", false, true)
}
