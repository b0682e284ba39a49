package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{pool: config.Pool}
}

const fileColumns = "id, name, folder_id, owner_id, size, mime_type, path, created_at, updated_at"

// Create inserts a new file row
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, name, folder_id, owner_id, size, mime_type, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.Name,
		file.FolderID,
		file.OwnerID,
		file.Size,
		file.MimeType,
		file.Path,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetByID retrieves a file by ID without owner scoping. The service layer
// compares OwnerID to tell missing apart from foreign.
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)

	row := r.pool.QueryRow(ctx, query, id)
	file, err := scanFile(row)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// ListByFolder lists an owner's files in the given folder. A nil folder
// selects the root level. opts.MimeType, when set, restricts results.
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string, ownerID string, opts models.ListOptions) ([]models.File, error) {
	opts.ApplyDefaults()

	where := "owner_id = $1 AND folder_id IS NULL"
	args := []interface{}{ownerID}
	if folderID != nil {
		where = "owner_id = $1 AND folder_id = $2"
		args = append(args, *folderID)
	}
	if opts.MimeType != "" {
		where = fmt.Sprintf("%s AND mime_type = $%d", where, len(args)+1)
		args = append(args, opts.MimeType)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM files
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, fileColumns, where, fileSortColumn(opts.SortBy), opts.SortOrder, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	return r.queryFiles(ctx, query, args...)
}

// Search returns the owner's files whose name contains the query
// substring, across all folders, case-insensitively.
func (r *PostgresFileRepository) Search(ctx context.Context, ownerID, query string, opts models.ListOptions) ([]models.File, error) {
	opts.ApplyDefaults()

	sql := fmt.Sprintf(`
		SELECT %s FROM files
		WHERE owner_id = $1 AND name ILIKE '%%' || $2 || '%%'
		ORDER BY %s %s
		LIMIT $3 OFFSET $4
	`, fileColumns, fileSortColumn(opts.SortBy), opts.SortOrder)

	return r.queryFiles(ctx, sql, ownerID, query, opts.Limit, opts.Offset)
}

// Update replaces the file row keyed by ID
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET name = $1, folder_id = $2, size = $3, mime_type = $4, path = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		file.Name,
		file.FolderID,
		file.Size,
		file.MimeType,
		file.Path,
		file.UpdatedAt,
		file.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.FolderID,
		&file.OwnerID,
		&file.Size,
		&file.MimeType,
		&file.Path,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// fileSortColumn guards ORDER BY interpolation.
func fileSortColumn(sortBy string) string {
	switch sortBy {
	case models.SortByCreatedAt, models.SortByUpdatedAt, models.SortBySize:
		return sortBy
	default:
		return models.SortByName
	}
}
