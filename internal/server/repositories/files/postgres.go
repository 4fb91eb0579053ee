package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/dbx"
	"github.com/mkarpenko/filekeeper/internal/server/models"
)

const assetColumns = "id, owner_id, display_name, stored_name, thumbnail_name, content_type, size, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, asset *models.FileAsset) (*models.FileAsset, error) {

	query :=
		`INSERT INTO file_assets (owner_id, display_name, stored_name, thumbnail_name, content_type, size)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		asset.OwnerID, asset.DisplayName, asset.StoredName,
		nullable(asset.ThumbnailName), nullable(asset.ContentType), asset.Size,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.FileAsset, error) {
	query :=
		`SELECT ` + assetColumns + ` FROM file_assets
		 WHERE owner_id = $1 AND id = $2
		 `

	return scanAsset(r.db.QueryRowContext(ctx, query, ownerID, id))
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int, sortAsc bool) ([]*models.FileAsset, error) {
	direction := "DESC"
	if sortAsc {
		direction = "ASC"
	}

	query :=
		`SELECT ` + assetColumns + ` FROM file_assets
		 WHERE owner_id = $1
		 ORDER BY created_at ` + direction + `
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	assets := []*models.FileAsset{}
	for rows.Next() {
		asset, err := scanAssetRow(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return assets, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	query :=
		`SELECT COUNT(*) FROM file_assets
		 WHERE owner_id = $1
		 `

	var total int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

func (r *PostgresRepository) UpdateDisplayName(ctx context.Context, ownerID, id, displayName string, at time.Time) (*models.FileAsset, error) {
	query :=
		`UPDATE file_assets SET display_name = $3, updated_at = $4
		 WHERE owner_id = $1 AND id = $2
		 RETURNING ` + assetColumns + `
		 `

	return scanAsset(r.db.QueryRowContext(ctx, query, ownerID, id, displayName, at))
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query :=
		`DELETE FROM file_assets
		 WHERE owner_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row *sql.Row) (*models.FileAsset, error) {
	return scanAssetRow(row)
}

func scanAssetRow(row rowScanner) (*models.FileAsset, error) {
	asset := &models.FileAsset{}
	var thumbnailName, contentType sql.NullString

	err := row.Scan(&asset.ID, &asset.OwnerID, &asset.DisplayName, &asset.StoredName,
		&thumbnailName, &contentType, &asset.Size, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	asset.ThumbnailName = thumbnailName.String
	asset.ContentType = contentType.String

	return asset, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
