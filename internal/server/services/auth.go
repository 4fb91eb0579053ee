// Package services contains server-side business logic. This file implements
// AuthService, which handles signup, login (token + session issuance), and
// logout (session revocation).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/dbx"
	"github.com/mkarpenko/filekeeper/internal/server/auth"
	"github.com/mkarpenko/filekeeper/internal/server/config"
	"github.com/mkarpenko/filekeeper/internal/server/models"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/repomanager"
)

// AuthService provides the account lifecycle operations:
// - Signup: create users
// - Login: verify credentials, mint a token, and record its session
// - Logout: revoke the session a token points at
type AuthService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	codec *auth.Codec
	ttl   time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		db:    db,
		repos: m,
		codec: codec,
		ttl:   cfg.AccessTokenTTL,
	}
}

// TokenTTL returns the configured access token lifetime; the HTTP layer uses
// it for the cookie max-age.
func (s *AuthService) TokenTTL() time.Duration { return s.ttl }

// Signup creates a new user. A duplicate email yields
// common.ErrorAlreadyExists whether it is caught by the pre-check or, under
// a concurrent signup race, by the unique constraint on the insert itself.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and, on success, issues an access token
// and records the session row the token's jti points at. The token and the
// session are committed together: if the session insert fails, no token
// reaches the client. An unknown email and a wrong password are deliberately
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("error fetching user: %w", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, common.ErrorUnauthorized
	}

	token, jti, err := s.codec.Issue(user.Email, user.ID, s.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("error issuing token: %w", err)
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repos.Sessions(tx).Create(ctx, user.ID, jti, time.Now().UTC())
		return err
	}); err != nil {
		return "", nil, fmt.Errorf("error creating session: %w", err)
	}

	return token, user, nil
}

// Logout revokes the session identified by token. Expired tokens are
// accepted here: a compromised session must stay revocable after its token
// expires. Incomplete claims, a missing session, or an already revoked one
// all yield common.ErrorUnauthorized, which makes repeated logouts
// idempotent from the client's point of view.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims := s.codec.Decode(token, true)
	if !claims.Complete() {
		return common.ErrorUnauthorized
	}

	repo := s.repos.Sessions(s.db)

	session, err := repo.Find(ctx, claims.UID, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("error fetching session: %w", err)
	}
	if session.Revoked() {
		return common.ErrorUnauthorized
	}

	if err := repo.Revoke(ctx, session.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}

	return nil
}
