package sessions

import (
	"context"
	"time"

	"github.com/mkarpenko/filekeeper/internal/server/models"
)

type Repository interface {
	// Create records a new session keyed by the token's jti.
	Create(ctx context.Context, userID, jti string, createdAt time.Time) (*models.UserSession, error)

	// FindActive returns the session for (userID, jti) excluding revoked
	// rows; common.ErrorNotFound covers both absent and revoked.
	FindActive(ctx context.Context, userID, jti string) (*models.UserSession, error)

	// Find returns the session regardless of revocation state. Logout needs
	// it to distinguish "never existed" from "already revoked".
	Find(ctx context.Context, userID, jti string) (*models.UserSession, error)

	// Revoke sets deleted_at on an active session. Revoking an already
	// revoked session is a no-op, not an error.
	Revoke(ctx context.Context, id string, at time.Time) error
}
