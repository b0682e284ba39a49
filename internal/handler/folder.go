package handler

import (
	"log/slog"
	"net/http"

	"drivehub/internal/domain/models"
	"drivehub/internal/httputil"
	"drivehub/internal/middleware"
	"drivehub/internal/service"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folders *service.FolderService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders *service.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// Create creates a new folder
// POST /api/folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = middleware.OwnerFromContext(r.Context())

	folder, err := h.folders.Create(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// List lists folders under a parent (root when parentId is absent)
// GET /api/folders?parentId=&limit=&offset=&sortBy=&sortOrder=
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	parentID := httputil.OptionalQuery(r, "parentId")
	opts := listOptionsFromQuery(r)

	folders, err := h.folders.List(r.Context(), parentID, ownerID, opts)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// Get retrieves a single folder
// GET /api/folders/{id}
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	folder, err := h.folders.Get(r.Context(), id, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Update renames a folder
// PUT /api/folders/{id}
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folders.Rename(r.Context(), id, req.Name, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Move re-parents a folder; a null/absent target moves it to the root
// PUT /api/folders/{id}/move
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		TargetFolderID *string `json:"target_folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folders.Move(r.Context(), id, req.TargetFolderID, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// Delete removes a folder and its contents
// DELETE /api/folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.folders.Delete(r.Context(), id, ownerID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listOptionsFromQuery reads the shared pagination/sorting parameters.
func listOptionsFromQuery(r *http.Request) models.ListOptions {
	return models.ListOptions{
		Limit:     httputil.QueryInt(r, "limit"),
		Offset:    httputil.QueryInt(r, "offset"),
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
	}
}
