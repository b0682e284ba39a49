package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/domain/repositories"
)

// maxTreeDepth bounds ancestor walks so a corrupted parent chain cannot
// loop forever.
const maxTreeDepth = 1000

// FolderService orchestrates folder operations: validation, ownership
// checks and parent consistency live here, not in the repositories.
type FolderService struct {
	folderRepo  repositories.FolderRepository
	fileService *FileService
	logger      *slog.Logger
}

// NewFolderService creates a new folder service. The file service is used
// to delete contained files (and their blobs) on cascading folder
// deletion.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileService *FileService,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folderRepo:  folderRepo,
		fileService: fileService,
		logger:      logger,
	}
}

// CreateFolderRequest carries the inputs of FolderService.Create.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	OwnerID  string  `json:"-"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OwnerID, validation.Required),
		validation.Field(&r.Name, validation.Required.Error("folder name is required"), validation.By(models.CheckName)),
	)
}

// Create validates the name, verifies the parent (when given) exists and
// belongs to the same owner, and persists a fresh folder.
func (s *FolderService) Create(ctx context.Context, req CreateFolderRequest) (*models.Folder, error) {
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := req.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	if req.ParentID != nil {
		if _, err := s.getOwnedFolder(ctx, *req.ParentID, req.OwnerID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		Name:      req.Name,
		ParentID:  req.ParentID,
		OwnerID:   req.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"owner_id", folder.OwnerID,
	)

	return folder, nil
}

// Get returns a folder after the ownership check.
func (s *FolderService) Get(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	return s.getOwnedFolder(ctx, id, ownerID)
}

// Rename validates and applies a new name. The stored folder is unchanged
// on validation failure.
func (s *FolderService) Rename(ctx context.Context, id, name, ownerID string) (*models.Folder, error) {
	folder, err := s.getOwnedFolder(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := folder.Rename(name); err != nil {
		return nil, err
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// Move re-parents a folder. A nil target moves it to the root. Moving a
// folder into itself or one of its descendants is rejected.
func (s *FolderService) Move(ctx context.Context, id string, targetFolderID *string, ownerID string) (*models.Folder, error) {
	if targetFolderID != nil && *targetFolderID == "" {
		targetFolderID = nil
	}

	folder, err := s.getOwnedFolder(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if targetFolderID != nil {
		if _, err := s.getOwnedFolder(ctx, *targetFolderID, ownerID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
		if err := s.checkNoCycle(ctx, id, *targetFolderID); err != nil {
			return nil, err
		}
	}

	folder.ParentID = targetFolderID
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", folder.ID, "parent_id", folder.ParentID)
	return folder, nil
}

// Delete removes a folder and everything beneath it: child folders
// recursively plus contained files with their blobs. File deletion is
// delegated to the file service so blob-before-metadata ordering holds
// for every file in the subtree.
func (s *FolderService) Delete(ctx context.Context, id, ownerID string) error {
	folder, err := s.getOwnedFolder(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.deleteDescendants(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.folderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id, "name", folder.Name, "owner_id", ownerID)
	return nil
}

// List returns the owner's folders under the given parent, name-ascending
// unless opts says otherwise.
func (s *FolderService) List(ctx context.Context, parentID *string, ownerID string, opts models.ListOptions) ([]models.Folder, error) {
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	folders, err := s.folderRepo.ListByParent(ctx, parentID, ownerID, opts)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// deleteDescendants depth-first deletes child folders and contained files.
func (s *FolderService) deleteDescendants(ctx context.Context, folderID, ownerID string) error {
	for {
		children, err := s.folderRepo.ListByParent(ctx, &folderID, ownerID, models.ListOptions{})
		if err != nil {
			return fmt.Errorf("list child folders: %w", err)
		}
		if len(children) == 0 {
			break
		}
		for _, child := range children {
			if err := s.deleteDescendants(ctx, child.ID, ownerID); err != nil {
				return err
			}
			if err := s.folderRepo.Delete(ctx, child.ID); err != nil {
				return fmt.Errorf("delete child folder %q: %w", child.Name, err)
			}
			s.logger.Debug("deleted child folder", "id", child.ID, "name", child.Name)
		}
	}

	for {
		files, err := s.fileService.fileRepo.ListByFolder(ctx, &folderID, ownerID, models.ListOptions{})
		if err != nil {
			return fmt.Errorf("list contained files: %w", err)
		}
		if len(files) == 0 {
			break
		}
		for _, file := range files {
			if err := s.fileService.Delete(ctx, file.ID, ownerID); err != nil {
				return fmt.Errorf("delete file %q: %w", file.Name, err)
			}
			s.logger.Debug("deleted contained file", "id", file.ID, "name", file.Name)
		}
	}

	return nil
}

// checkNoCycle rejects moves that would make folderID an ancestor of
// itself: the target must not be folderID or any of its descendants,
// which is equivalent to folderID not appearing on the target's ancestor
// chain.
func (s *FolderService) checkNoCycle(ctx context.Context, folderID, targetID string) error {
	if folderID == targetID {
		return fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
	}

	current := targetID
	for depth := 0; depth < maxTreeDepth; depth++ {
		folder, err := s.folderRepo.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if folder.ParentID == nil {
			return nil
		}
		if *folder.ParentID == folderID {
			return fmt.Errorf("%w: cannot move a folder into its own subtree", domain.ErrValidation)
		}
		current = *folder.ParentID
	}
	return fmt.Errorf("%w: folder tree too deep", domain.ErrValidation)
}

// getOwnedFolder fetches a folder and enforces ownership: absent ids map
// to not-found, foreign ids to forbidden.
func (s *FolderService) getOwnedFolder(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrForbidden)
	}
	return folder, nil
}

// wrapValidation tags ozzo-validation failures with the domain sentinel
// so handlers map them to 400.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
