package users

import (
	"context"

	"github.com/mkarpenko/filekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills the server-assigned fields.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
