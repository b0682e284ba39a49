package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
)

// LocalService is the read-only local directory browser. It is a separate
// namespace from the owned folder tree: no owner, no database rows, just
// a pass-through over the host filesystem, optionally fenced to an
// allowlist of roots.
type LocalService struct {
	defaultDir   string
	allowedRoots []string
	logger       *slog.Logger
}

// NewLocalService creates a local browser service. defaultDir is used
// when no path is supplied (typically the home directory). An empty
// allowedRoots list disables fencing.
func NewLocalService(defaultDir string, allowedRoots []string, logger *slog.Logger) *LocalService {
	cleaned := make([]string, 0, len(allowedRoots))
	for _, root := range allowedRoots {
		if root == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(root))
	}
	return &LocalService{
		defaultDir:   defaultDir,
		allowedRoots: cleaned,
		logger:       logger,
	}
}

// ListDirectory lists a directory's entries, directories first, then
// name-ascending. Entries that cannot be stat-ed are skipped rather than
// failing the whole listing.
func (s *LocalService) ListDirectory(path string) (*models.LocalListing, error) {
	if path == "" {
		path = s.defaultDir
	}
	path = filepath.Clean(path)

	if err := s.checkAllowed(path); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read directory %s", domain.ErrValidation, path)
	}

	items := make([]models.LocalEntry, 0, len(entries))
	for _, entry := range entries {
		fullPath := filepath.Join(path, entry.Name())
		info, err := os.Stat(fullPath)
		if err != nil {
			// Skip entries we cannot access
			s.logger.Debug("skipping unreadable entry", "path", fullPath, "error", err)
			continue
		}
		items = append(items, models.LocalEntry{
			Name:        entry.Name(),
			Path:        fullPath,
			IsDirectory: info.IsDir(),
			Size:        info.Size(),
			ModifiedAt:  info.ModTime(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDirectory != items[j].IsDirectory {
			return items[i].IsDirectory
		}
		return items[i].Name < items[j].Name
	})

	return &models.LocalListing{CurrentPath: path, Items: items}, nil
}

// ReadFile returns a local file's bytes together with its display name
// (the last path segment).
func (s *LocalService) ReadFile(path string) ([]byte, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("%w: file path is required", domain.ErrValidation)
	}
	path = filepath.Clean(path)

	if err := s.checkAllowed(path); err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot read file %s", domain.ErrValidation, path)
	}

	return data, filepath.Base(path), nil
}

// checkAllowed enforces the root allowlist. No allowlist means every path
// is browsable.
func (s *LocalService) checkAllowed(path string) error {
	if len(s.allowedRoots) == 0 {
		return nil
	}
	for _, root := range s.allowedRoots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path %s: %w", path, domain.ErrForbidden)
}
