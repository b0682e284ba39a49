// Package memory provides mutex-guarded in-memory implementations of the
// metadata repositories. They back DB-less development (empty
// DATABASE_URL) and the service test suites, and mirror the ordering and
// scoping semantics of the postgres implementations.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// FolderRepository is an in-memory repositories.FolderRepository.
type FolderRepository struct {
	mu      sync.RWMutex
	folders map[string]models.Folder
}

// NewFolderRepository creates an empty in-memory folder repository.
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{folders: make(map[string]models.Folder)}
}

var _ repositories.FolderRepository = (*FolderRepository)(nil)

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &folder, nil
}

func (r *FolderRepository) ListByParent(ctx context.Context, parentID *string, ownerID string, opts models.ListOptions) ([]models.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.ApplyDefaults()

	r.mu.RLock()
	var result []models.Folder
	for _, folder := range r.folders {
		if folder.OwnerID != ownerID {
			continue
		}
		if !sameScope(folder.ParentID, parentID) {
			continue
		}
		result = append(result, folder)
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		less := folderLess(result[i], result[j], opts.SortBy)
		if opts.SortOrder == models.SortDesc {
			return !less
		}
		return less
	})

	return paginate(result, opts.Limit, opts.Offset), nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

func folderLess(a, b models.Folder, sortBy string) bool {
	switch sortBy {
	case models.SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case models.SortByUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.Name < b.Name
	}
}

// sameScope compares two nullable parent references: both nil, or both
// set to the same id.
func sameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
