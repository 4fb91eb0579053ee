package models

import "time"

// UserSession links a signed token (through its jti claim) to revocable
// server-side state. DeletedAt is a logical delete: nil means active,
// non-nil records when the session was revoked. Rows are never removed,
// keeping an audit trail of past sessions.
type UserSession struct {
	ID        string
	UserID    string
	JTI       string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Revoked reports whether the session has been logically deleted.
func (s *UserSession) Revoked() bool {
	return s.DeletedAt != nil
}
