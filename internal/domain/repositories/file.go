package repositories

import (
	"context"

	"drivehub/internal/domain/models"
)

// FileRepository persists file metadata. Blob bytes live elsewhere; rows
// reference them through the opaque Path key.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)

	// ListByFolder returns an owner's files in the given folder.
	// folderID nil selects the root level. opts.MimeType, when set,
	// restricts results to that MIME type.
	ListByFolder(ctx context.Context, folderID *string, ownerID string, opts models.ListOptions) ([]models.File, error)

	// Search returns the owner's files whose name contains the query
	// substring, across all folders.
	Search(ctx context.Context, ownerID, query string, opts models.ListOptions) ([]models.File, error)

	// Update replaces the stored row keyed by file.ID.
	Update(ctx context.Context, file *models.File) error

	Delete(ctx context.Context, id string) error
}
