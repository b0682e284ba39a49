package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{pool: config.Pool}
}

// Create inserts a new folder row
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (id, name, parent_id, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.OwnerID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID without owner scoping. The service
// layer compares OwnerID to tell missing apart from foreign.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `
		SELECT id, name, parent_id, owner_id, created_at, updated_at
		FROM folders
		WHERE id = $1
	`

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.OwnerID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// ListByParent lists an owner's folders under the given parent. A nil
// parent selects the root level.
func (r *PostgresFolderRepository) ListByParent(ctx context.Context, parentID *string, ownerID string, opts models.ListOptions) ([]models.Folder, error) {
	opts.ApplyDefaults()

	var query string
	var args []interface{}

	// Sort column and order come from a whitelist, never from raw input.
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, name, parent_id, owner_id, created_at, updated_at
			FROM folders
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY %s %s
			LIMIT $2 OFFSET $3
		`, folderSortColumn(opts.SortBy), opts.SortOrder)
		args = append(args, ownerID, opts.Limit, opts.Offset)
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, parent_id, owner_id, created_at, updated_at
			FROM folders
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY %s %s
			LIMIT $3 OFFSET $4
		`, folderSortColumn(opts.SortBy), opts.SortOrder)
		args = append(args, ownerID, *parentID, opts.Limit, opts.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.OwnerID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// Update replaces the folder row keyed by ID
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `
		UPDATE folders
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a folder row
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s still referenced: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// folderSortColumn guards ORDER BY interpolation. Size is meaningless for
// folders and falls back to name.
func folderSortColumn(sortBy string) string {
	switch sortBy {
	case models.SortByCreatedAt, models.SortByUpdatedAt:
		return sortBy
	default:
		return models.SortByName
	}
}
