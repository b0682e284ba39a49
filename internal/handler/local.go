package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"drivehub/internal/httputil"
	"drivehub/internal/service"
)

// LocalHandler exposes the read-only local directory browser.
type LocalHandler struct {
	local  *service.LocalService
	logger *slog.Logger
}

// NewLocalHandler creates a new local browser handler
func NewLocalHandler(local *service.LocalService, logger *slog.Logger) *LocalHandler {
	return &LocalHandler{local: local, logger: logger}
}

// List lists a local directory (default when path is absent)
// GET /api/local/files?path=
func (h *LocalHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.local.ListDirectory(r.URL.Query().Get("path"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}

// Download streams a local file as an attachment
// GET /api/local/download?path=
func (h *LocalHandler) Download(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file path is required")
		return
	}

	data, name, err := h.local.ReadFile(path)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("local download interrupted", "path", path, "error", err)
	}
}
