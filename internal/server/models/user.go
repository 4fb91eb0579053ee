// Package models holds the persistence-level entities shared by
// repositories and services.
package models

import "time"

// User is an account identified by email. PasswordHash is the bcrypt hash of
// the prehashed password and must never be logged or serialized to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
