package httpapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkarpenko/filekeeper/internal/server/models"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// detailResponse is the envelope for the outer 500 boundary. It carries a
// request id instead of any internals.
type detailResponse struct {
	Detail string `json:"detail"`
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type renameRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type fileResponse struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	HasThumbnail bool      `json:"has_thumbnail"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type fileListResponse struct {
	Total int64          `json:"total"`
	Items []fileResponse `json:"items"`
}

type urlResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toFileResponse(a *models.FileAsset) fileResponse {
	return fileResponse{
		ID:           a.ID,
		DisplayName:  a.DisplayName,
		ContentType:  a.ContentType,
		Size:         a.Size,
		HasThumbnail: a.ThumbnailName != "",
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toFileListResponse(total int64, assets []*models.FileAsset) fileListResponse {
	items := make([]fileResponse, 0, len(assets))
	for _, a := range assets {
		items = append(items, toFileResponse(a))
	}
	return fileListResponse{Total: total, Items: items}
}

// bindingMessage turns a gin binding failure into a message naming the
// violated field.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		v := verrs[0]
		field := strings.ToLower(v.Field())
		switch v.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", field)
		case "email":
			return fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", field, v.Param())
		default:
			return fmt.Sprintf("%s is invalid", field)
		}
	}
	return "malformed request body"
}
