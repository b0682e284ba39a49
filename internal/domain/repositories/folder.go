package repositories

import (
	"context"

	"drivehub/internal/domain/models"
)

// FolderRepository persists folder metadata. The store holds no business
// rules: ownership and name validation happen in the service layer.
// GetByID is deliberately not owner-scoped so services can tell a missing
// folder apart from one owned by somebody else.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListByParent returns an owner's folders under the given parent.
	// parentID nil selects the root level. Ordered per opts, name
	// ascending by default.
	ListByParent(ctx context.Context, parentID *string, ownerID string, opts models.ListOptions) ([]models.Folder, error)

	// Update replaces the stored row keyed by folder.ID.
	Update(ctx context.Context, folder *models.Folder) error

	Delete(ctx context.Context, id string) error
}
