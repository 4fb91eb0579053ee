package sessions

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, jti string, createdAt time.Time) (*models.UserSession, error) {

	query :=
		`INSERT INTO user_sessions (user_id, jti, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	session := &models.UserSession{UserID: userID, JTI: jti, CreatedAt: createdAt}
	err := r.db.QueryRowContext(ctx, query, userID, jti, createdAt).Scan(&session.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID, jti string) (*models.UserSession, error) {
	query :=
		`SELECT id, user_id, jti, created_at, deleted_at FROM user_sessions
		 WHERE user_id = $1 AND jti = $2 AND deleted_at IS NULL
		 `

	return r.scanSession(r.db.QueryRowContext(ctx, query, userID, jti))
}

func (r *PostgresRepository) Find(ctx context.Context, userID, jti string) (*models.UserSession, error) {
	query :=
		`SELECT id, user_id, jti, created_at, deleted_at FROM user_sessions
		 WHERE user_id = $1 AND jti = $2
		 `

	return r.scanSession(r.db.QueryRowContext(ctx, query, userID, jti))
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE user_sessions SET deleted_at = $2
		 WHERE id = $1 AND deleted_at IS NULL
		 `

	// Zero rows affected means the session was already revoked; the logical
	// delete stays idempotent either way.
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) scanSession(row *sql.Row) (*models.UserSession, error) {
	session := &models.UserSession{}
	var deletedAt sql.NullTime

	err := row.Scan(&session.ID, &session.UserID, &session.JTI, &session.CreatedAt, &deletedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if deletedAt.Valid {
		session.DeletedAt = &deletedAt.Time
	}

	return session, nil
}
