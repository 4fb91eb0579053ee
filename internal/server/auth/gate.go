package auth

import (
	"context"
	"errors"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/server/models"
)

// RejectCode classifies why the gate refused a request. Clients only ever
// see a uniform 401; the code is for logs.
type RejectCode string

const (
	RejectMissingToken       RejectCode = "missing_token"
	RejectTokenMismatch      RejectCode = "token_mismatch"
	RejectInvalidTokenClaims RejectCode = "invalid_token_claims"
	RejectSessionNotFound    RejectCode = "session_not_found"
	RejectSessionRevoked     RejectCode = "session_revoked"
	RejectUserNotFound       RejectCode = "user_not_found"
)

// Rejection is the typed refusal result of the gate. It is a value threaded
// back to the HTTP layer, not an error: only unexpected store failures
// travel the error path.
type Rejection struct {
	Code    RejectCode
	Message string
}

func reject(code RejectCode, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}

// SessionStore is the session lookup the gate needs from persistence.
type SessionStore interface {
	// FindActive returns the session for (userID, jti) unless it has been
	// revoked; absent and revoked are both common.ErrorNotFound.
	FindActive(ctx context.Context, userID, jti string) (*models.UserSession, error)
}

// UserStore is the user lookup the gate needs from persistence.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Gate authorizes protected requests: it verifies the double-submitted
// token, cross-checks the referenced session, and loads the caller.
type Gate struct {
	codec    *Codec
	sessions SessionStore
	users    UserStore
}

func NewGate(codec *Codec, sessions SessionStore, users UserStore) *Gate {
	return &Gate{codec: codec, sessions: sessions, users: users}
}

// Authenticate runs the ordered checks for a protected request and returns
// the authenticated user, or a Rejection naming the first check that
// failed. The non-nil error return is reserved for store failures that are
// not an authorization outcome; the HTTP boundary maps those to 500.
func (g *Gate) Authenticate(ctx context.Context, headerToken, cookieToken string) (*models.User, *Rejection, error) {
	if headerToken == "" || cookieToken == "" {
		return nil, reject(RejectMissingToken, "No access token provided"), nil
	}
	if headerToken != cookieToken {
		return nil, reject(RejectTokenMismatch, "Header and cookie tokens must match"), nil
	}

	claims := g.codec.Decode(headerToken, false)
	if !claims.Complete() {
		return nil, reject(RejectInvalidTokenClaims, "Token is invalid or missing claims"), nil
	}

	session, err := g.sessions.FindActive(ctx, claims.UID, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(RejectSessionNotFound, "Session not found for token"), nil
		}
		return nil, nil, err
	}
	// FindActive already excludes revoked rows; keep the check anyway so a
	// lookup regression cannot silently re-admit revoked sessions.
	if session.Revoked() {
		return nil, reject(RejectSessionRevoked, "Session has been revoked"), nil
	}

	user, err := g.users.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(RejectUserNotFound, "User not found"), nil
		}
		return nil, nil, err
	}

	return user, nil, nil
}
