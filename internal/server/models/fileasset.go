package models

import "time"

// FileAsset is the metadata row for an uploaded object. The bytes themselves
// live in the object store under StoredName (and ThumbnailName for the
// generated preview, empty when the upload was not an image).
type FileAsset struct {
	ID            string
	OwnerID       string
	DisplayName   string
	StoredName    string
	ThumbnailName string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
