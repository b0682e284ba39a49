package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"drivehub/internal/blob"
	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// FileService orchestrates file operations across the metadata store and
// the blob store. Cross-store ordering lives here: upload writes the blob
// before the metadata row, delete removes the blob before the metadata
// row.
type FileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	blobs      blob.Store
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	blobs blob.Store,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		blobs:      blobs,
		logger:     logger,
	}
}

// UploadFileRequest carries the inputs of FileService.Upload. Content is
// read exactly once.
type UploadFileRequest struct {
	Name     string
	FolderID *string
	OwnerID  string
	Content  io.Reader
	Size     int64
	MimeType string
}

func (r UploadFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OwnerID, validation.Required),
		validation.Field(&r.Name, validation.Required.Error("file name is required"), validation.By(models.CheckName)),
		validation.Field(&r.Size, validation.Min(0)),
	)
}

// ListFilesRequest carries the inputs of FileService.List.
type ListFilesRequest struct {
	FolderID *string
	OwnerID  string
	Search   string
	Options  models.ListOptions
}

// Upload stores the content under a fresh "{ownerID}/{fileID}" blob key
// and then persists the metadata row. A blob-write failure aborts before
// any metadata is written; a metadata failure triggers a best-effort blob
// cleanup.
func (s *FileService) Upload(ctx context.Context, req UploadFileRequest) (*models.File, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	if err := req.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	if req.FolderID != nil {
		if _, err := s.getOwnedFolder(ctx, *req.FolderID, req.OwnerID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileID := uuid.NewString()
	key := req.OwnerID + "/" + fileID

	if err := s.blobs.Save(ctx, key, req.Content); err != nil {
		return nil, fmt.Errorf("save file content: %w", err)
	}

	now := time.Now()
	file := &models.File{
		ID:        fileID,
		Name:      req.Name,
		FolderID:  req.FolderID,
		OwnerID:   req.OwnerID,
		Size:      req.Size,
		MimeType:  mimeType,
		Path:      key,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The blob is already on disk; try not to leave it orphaned.
		if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil {
			s.logger.Warn("orphaned blob after failed metadata write",
				"key", key, "error", cleanupErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"size", file.Size,
		"mime_type", file.MimeType,
		"folder_id", file.FolderID,
		"owner_id", file.OwnerID,
	)

	return file, nil
}

// Get returns a file's metadata after the ownership check.
func (s *FileService) Get(ctx context.Context, id, ownerID string) (*models.File, error) {
	return s.getOwnedFile(ctx, id, ownerID)
}

// Rename validates and applies a new display name. The blob key never
// changes on rename.
func (s *FileService) Rename(ctx context.Context, id, name, ownerID string) (*models.File, error) {
	file, err := s.getOwnedFile(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := file.Rename(name); err != nil {
		return nil, err
	}

	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", file.ID, "name", file.Name)
	return file, nil
}

// Move changes the file's folder placement. Metadata only: the blob stays
// where it is.
func (s *FileService) Move(ctx context.Context, id string, targetFolderID *string, ownerID string) (*models.File, error) {
	if targetFolderID != nil && *targetFolderID == "" {
		targetFolderID = nil
	}

	file, err := s.getOwnedFile(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if targetFolderID != nil {
		if _, err := s.getOwnedFolder(ctx, *targetFolderID, ownerID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
	}

	file.FolderID = targetFolderID
	file.UpdatedAt = time.Now()

	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file moved", "id", file.ID, "folder_id", file.FolderID)
	return file, nil
}

// Delete removes the blob first, then the metadata row. A blob-deletion
// failure aborts with the metadata intact, so no row ever points at
// missing bytes; the reverse (orphaned blob) is accepted.
func (s *FileService) Delete(ctx context.Context, id, ownerID string) error {
	file, err := s.getOwnedFile(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.Path); err != nil {
		return fmt.Errorf("delete file content: %w", err)
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", id, "name", file.Name, "owner_id", ownerID)
	return nil
}

// Download returns the file's metadata together with a reader over its
// content. The caller closes the reader.
func (s *FileService) Download(ctx context.Context, id, ownerID string) (*models.File, io.ReadCloser, error) {
	file, err := s.getOwnedFile(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, file.Path)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, fmt.Errorf("content of file %s: %w", id, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open file content: %w", err)
	}

	return file, rc, nil
}

// List returns the owner's files. A non-empty search term switches to a
// substring match across all of the owner's files, ignoring the folder
// scope; otherwise results come from the given folder (nil = root).
func (s *FileService) List(ctx context.Context, req ListFilesRequest) ([]models.File, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	var files []models.File
	var err error
	if req.Search != "" {
		files, err = s.fileRepo.Search(ctx, req.OwnerID, req.Search, req.Options)
	} else {
		files, err = s.fileRepo.ListByFolder(ctx, req.FolderID, req.OwnerID, req.Options)
	}
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.File{}
	}
	return files, nil
}

func (s *FileService) getOwnedFile(ctx context.Context, id, ownerID string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrForbidden)
	}
	return file, nil
}

func (s *FileService) getOwnedFolder(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrForbidden)
	}
	return folder, nil
}
