// Package common defines shared constants and sentinel errors used across
// the server layers of Filekeeper. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Conflict errors.
	ErrorAlreadyExists = errors.New("already exists")

	// Upload-specific errors.
	ErrorEmptyFile    = errors.New("empty file")
	ErrorFileTooLarge = errors.New("file too large")

	// Thumbnailing errors (input is not a decodable image).
	ErrorNotAnImage = errors.New("not an image")
)
