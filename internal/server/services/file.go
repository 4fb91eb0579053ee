package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/logging"
	"github.com/mkarpenko/filekeeper/internal/server/config"
	"github.com/mkarpenko/filekeeper/internal/server/models"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/repomanager"
	"github.com/mkarpenko/filekeeper/internal/server/storage"
	"github.com/mkarpenko/filekeeper/internal/server/thumbnail"
)

// Presigned URL lifetimes for the two access paths.
const (
	DownloadURLExpiry  = 12 * time.Hour
	ThumbnailURLExpiry = 1 * time.Hour
)

// ListParams are the pagination knobs for List. Zero values mean "use the
// defaults" (limit 10, offset 0, newest first).
type ListParams struct {
	Limit   int
	Offset  int
	SortAsc bool
}

const maxListLimit = 100

// FileService owns the file metadata plus the objects behind it: uploads,
// listing, renames, deletion, and presigned access URLs.
type FileService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  storage.ObjectStore
	cfg    *config.Config
	logger logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, cfg *config.Config, logger logging.Logger) *FileService {
	return &FileService{
		db:     db,
		repos:  m,
		store:  store,
		cfg:    cfg,
		logger: logger.With("module", "file_service"),
	}
}

// objectKey namespaces stored objects per owner.
func objectKey(ownerID, storedName string) string {
	return ownerID + "/" + storedName
}

// Upload validates the payload, stores the object (and a thumbnail when the
// upload is an image), and records the metadata row. Validation happens
// before anything touches the object store; a failed metadata insert
// removes the just-uploaded objects.
func (s *FileService) Upload(ctx context.Context, ownerID, filename, contentType string, data []byte) (*models.FileAsset, error) {
	if len(data) == 0 {
		return nil, common.ErrorEmptyFile
	}
	if int64(len(data)) > s.cfg.MaxUploadSizeBytes {
		return nil, common.ErrorFileTooLarge
	}
	if filename == "" {
		filename = "upload"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	storedName := fmt.Sprintf("%s_%s", newObjectID(), filename)
	key := objectKey(ownerID, storedName)

	if err := s.store.Upload(ctx, s.cfg.UploadBucket, key, data, contentType); err != nil {
		return nil, fmt.Errorf("error uploading object: %w", err)
	}

	thumbnailName := s.maybeUploadThumbnail(ctx, ownerID, storedName, contentType, data)

	asset := &models.FileAsset{
		OwnerID:       ownerID,
		DisplayName:   filename,
		StoredName:    storedName,
		ThumbnailName: thumbnailName,
		ContentType:   contentType,
		Size:          int64(len(data)),
	}

	created, err := s.repos.Files(s.db).Create(ctx, asset)
	if err != nil {
		s.removeObjects(ctx, ownerID, storedName, thumbnailName)
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	return created, nil
}

// maybeUploadThumbnail generates and stores a preview for image uploads.
// Thumbnailing is best-effort: an undecodable image or a failed thumbnail
// upload costs the preview, never the upload.
func (s *FileService) maybeUploadThumbnail(ctx context.Context, ownerID, storedName, contentType string, data []byte) string {
	if !thumbnail.IsImageContentType(contentType) {
		return ""
	}

	thumb, err := thumbnail.Generate(data)
	if err != nil {
		s.logger.Debug(ctx, "skipping thumbnail", "reason", err.Error())
		return ""
	}

	thumbnailName := storedName + ".png"
	if err := s.store.Upload(ctx, s.cfg.ThumbnailBucket, objectKey(ownerID, thumbnailName), thumb, "image/png"); err != nil {
		s.logger.Warn(ctx, "thumbnail upload failed", "error", err.Error())
		return ""
	}

	return thumbnailName
}

// List returns the owner's total file count and one page of items.
func (s *FileService) List(ctx context.Context, ownerID string, params ListParams) (int64, []*models.FileAsset, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	repo := s.repos.Files(s.db)

	total, err := repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, nil, fmt.Errorf("error counting files: %w", err)
	}

	items, err := repo.ListByOwner(ctx, ownerID, limit, offset, params.SortAsc)
	if err != nil {
		return 0, nil, fmt.Errorf("error listing files: %w", err)
	}

	return total, items, nil
}

// Get returns one of the owner's files; other users' files are
// common.ErrorNotFound.
func (s *FileService) Get(ctx context.Context, ownerID, id string) (*models.FileAsset, error) {
	return s.repos.Files(s.db).GetByID(ctx, ownerID, id)
}

// Rename updates the display name. The stored object key never changes.
func (s *FileService) Rename(ctx context.Context, ownerID, id, displayName string) (*models.FileAsset, error) {
	return s.repos.Files(s.db).UpdateDisplayName(ctx, ownerID, id, displayName, time.Now().UTC())
}

// Delete removes the metadata row and then the stored objects. The row is
// the source of truth: once it is gone the file no longer exists for the
// API, and a failed blob removal only leaves unreferenced garbage in the
// store, which is logged for cleanup.
func (s *FileService) Delete(ctx context.Context, ownerID, id string) error {
	asset, err := s.repos.Files(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repos.Files(s.db).Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.removeObjects(ctx, ownerID, asset.StoredName, asset.ThumbnailName)
	return nil
}

func (s *FileService) removeObjects(ctx context.Context, ownerID, storedName, thumbnailName string) {
	if err := s.store.Delete(ctx, s.cfg.UploadBucket, objectKey(ownerID, storedName)); err != nil {
		s.logger.Warn(ctx, "object delete failed", "key", objectKey(ownerID, storedName), "error", err.Error())
	}
	if thumbnailName != "" {
		if err := s.store.Delete(ctx, s.cfg.ThumbnailBucket, objectKey(ownerID, thumbnailName)); err != nil {
			s.logger.Warn(ctx, "thumbnail delete failed", "key", objectKey(ownerID, thumbnailName), "error", err.Error())
		}
	}
}

// DownloadURL returns a presigned GET URL for the original object together
// with the client-facing filename.
func (s *FileService) DownloadURL(ctx context.Context, ownerID, id string) (string, string, error) {
	asset, err := s.repos.Files(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return "", "", err
	}

	url, err := s.store.SignedGetURL(ctx, s.cfg.UploadBucket, objectKey(ownerID, asset.StoredName), DownloadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("error signing download url: %w", err)
	}

	return url, asset.DisplayName, nil
}

// ThumbnailURL returns a presigned GET URL for the preview, or
// common.ErrorNotFound when the file has none.
func (s *FileService) ThumbnailURL(ctx context.Context, ownerID, id string) (string, error) {
	asset, err := s.repos.Files(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	if asset.ThumbnailName == "" {
		return "", common.ErrorNotFound
	}

	url, err := s.store.SignedGetURL(ctx, s.cfg.ThumbnailBucket, objectKey(ownerID, asset.ThumbnailName), ThumbnailURLExpiry)
	if err != nil {
		return "", fmt.Errorf("error signing thumbnail url: %w", err)
	}

	return url, nil
}

func newObjectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
