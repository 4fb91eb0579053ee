package files

import (
	"context"
	"time"

	"github.com/mkarpenko/filekeeper/internal/server/models"
)

// Repository is the metadata store for uploaded objects. Every lookup is
// keyed by owner as well as id: a file another user owns is indistinguishable
// from a missing one.
type Repository interface {
	Create(ctx context.Context, asset *models.FileAsset) (*models.FileAsset, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.FileAsset, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int, sortAsc bool) ([]*models.FileAsset, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	UpdateDisplayName(ctx context.Context, ownerID, id, displayName string, at time.Time) (*models.FileAsset, error)
	Delete(ctx context.Context, ownerID, id string) error
}
