package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"drivehub/internal/httputil"
	"drivehub/internal/middleware"
	"drivehub/internal/service"
)

const (
	// maxUploadSize caps multipart uploads.
	maxUploadSize = 100 << 20 // 100MB

	// multipartMemory is how much of a parsed form stays in memory before
	// spilling to temp files.
	multipartMemory = 32 << 20
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, logger: logger}
}

// Upload stores a new file from a multipart form. The display name comes
// from the optional "name" field, falling back to the uploaded filename.
// POST /api/files/upload
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %dMB limit", maxUploadSize>>20))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer part.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}

	file, err := h.files.Upload(r.Context(), service.UploadFileRequest{
		Name:     name,
		FolderID: folderID,
		OwnerID:  middleware.OwnerFromContext(r.Context()),
		Content:  part,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// List lists files in a folder, or searches across all of the owner's
// files when a search term is present
// GET /api/files?folderId=&search=&mimeType=&limit=&offset=&sortBy=&sortOrder=
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r)
	opts.MimeType = r.URL.Query().Get("mimeType")

	files, err := h.files.List(r.Context(), service.ListFilesRequest{
		FolderID: httputil.OptionalQuery(r, "folderId"),
		OwnerID:  middleware.OwnerFromContext(r.Context()),
		Search:   r.URL.Query().Get("search"),
		Options:  opts,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// Download streams a file's bytes with its stored MIME type and an
// attachment disposition carrying the display name
// GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	file, content, err := h.files.Download(r.Context(), id, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// Headers are gone; nothing to do but log.
		h.logger.Warn("download interrupted", "file_id", id, "error", err)
	}
}

// Update renames a file
// PUT /api/files/{id}
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.files.Rename(r.Context(), id, req.Name, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Move changes a file's folder placement; a null/absent target moves it
// to the root
// PUT /api/files/{id}/move
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	var req struct {
		TargetFolderID *string `json:"target_folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.files.Move(r.Context(), id, req.TargetFolderID, ownerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Delete removes a file and its content
// DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.files.Delete(r.Context(), id, ownerID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
