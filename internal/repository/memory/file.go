package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// FileRepository is an in-memory repositories.FileRepository.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]models.File
}

// NewFileRepository creates an empty in-memory file repository.
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]models.File)}
}

var _ repositories.FileRepository = (*FileRepository)(nil)

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrConflict)
	}
	r.files[file.ID] = *file
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return &file, nil
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID *string, ownerID string, opts models.ListOptions) ([]models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.ApplyDefaults()

	r.mu.RLock()
	var result []models.File
	for _, file := range r.files {
		if file.OwnerID != ownerID {
			continue
		}
		if !sameScope(file.FolderID, folderID) {
			continue
		}
		if opts.MimeType != "" && file.MimeType != opts.MimeType {
			continue
		}
		result = append(result, file)
	}
	r.mu.RUnlock()

	sortFiles(result, opts)
	return paginate(result, opts.Limit, opts.Offset), nil
}

func (r *FileRepository) Search(ctx context.Context, ownerID, query string, opts models.ListOptions) ([]models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.ApplyDefaults()
	needle := strings.ToLower(query)

	r.mu.RLock()
	var result []models.File
	for _, file := range r.files {
		if file.OwnerID != ownerID {
			continue
		}
		if !strings.Contains(strings.ToLower(file.Name), needle) {
			continue
		}
		result = append(result, file)
	}
	r.mu.RUnlock()

	sortFiles(result, opts)
	return paginate(result, opts.Limit, opts.Offset), nil
}

func (r *FileRepository) Update(ctx context.Context, file *models.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; !ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	r.files[file.ID] = *file
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.files, id)
	return nil
}

func sortFiles(files []models.File, opts models.ListOptions) {
	sort.SliceStable(files, func(i, j int) bool {
		less := fileLess(files[i], files[j], opts.SortBy)
		if opts.SortOrder == models.SortDesc {
			return !less
		}
		return less
	})
}

func fileLess(a, b models.File, sortBy string) bool {
	switch sortBy {
	case models.SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case models.SortByUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	case models.SortBySize:
		return a.Size < b.Size
	default:
		return a.Name < b.Name
	}
}
