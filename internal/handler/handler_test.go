package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivehub/internal/blob"
	"drivehub/internal/domain/models"
	"drivehub/internal/middleware"
	"drivehub/internal/repository/memory"
	"drivehub/internal/service"
)

const testOwner = "test-owner"

// newTestServer wires the full handler stack against in-memory backends,
// with a static owner identity standing in for the auth middleware.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	folderRepo := memory.NewFolderRepository()
	fileRepo := memory.NewFileRepository()
	blobs := blob.NewMemoryStore()

	fileService := service.NewFileService(fileRepo, folderRepo, blobs, logger)
	folderService := service.NewFolderService(folderRepo, fileService, logger)
	localService := service.NewLocalService(t.TempDir(), nil, logger)

	folders := NewFolderHandler(folderService, logger)
	files := NewFileHandler(fileService, logger)
	local := NewLocalHandler(localService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("POST /api/folders", folders.Create)
	mux.HandleFunc("GET /api/folders", folders.List)
	mux.HandleFunc("GET /api/folders/{id}", folders.Get)
	mux.HandleFunc("PUT /api/folders/{id}", folders.Update)
	mux.HandleFunc("PUT /api/folders/{id}/move", folders.Move)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.Delete)
	mux.HandleFunc("POST /api/files/upload", files.Upload)
	mux.HandleFunc("GET /api/files", files.List)
	mux.HandleFunc("GET /api/files/{id}/download", files.Download)
	mux.HandleFunc("PUT /api/files/{id}", files.Update)
	mux.HandleFunc("PUT /api/files/{id}/move", files.Move)
	mux.HandleFunc("DELETE /api/files/{id}", files.Delete)
	mux.HandleFunc("GET /api/local/files", local.List)
	mux.HandleFunc("GET /api/local/download", local.Download)

	srv := httptest.NewServer(middleware.StaticOwner(testOwner)(middleware.Recovery(logger)(mux)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func uploadFile(t *testing.T, srv *httptest.Server, name, content string, folderID string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	if folderID != "" {
		require.NoError(t, mw.WriteField("folder_id", folderID))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/files/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFolderLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// Create
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "projects"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Folder](t, resp)
	assert.Equal(t, "projects", created.Name)
	assert.Equal(t, testOwner, created.OwnerID)

	// Get
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/folders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Folder](t, resp)
	assert.Equal(t, created.ID, got.ID)

	// Rename
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/folders/"+created.ID, map[string]any{"name": "archive"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renamed := decode[models.Folder](t, resp)
	assert.Equal(t, "archive", renamed.Name)

	// List roots
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/folders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]models.Folder](t, resp)
	require.Len(t, listed, 1)

	// Delete
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/folders/"+created.ID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/folders/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFolderMoveOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "a"})
	a := decode[models.Folder](t, resp)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "b"})
	b := decode[models.Folder](t, resp)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/folders/"+b.ID+"/move", map[string]any{"target_folder_id": a.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[models.Folder](t, resp)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	// Moving a folder under its own child is a 400
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/folders/"+a.ID+"/move", map[string]any{"target_folder_id": b.ID})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFolderCreateErrors(t *testing.T) {
	srv := newTestServer(t)

	// Invalid name
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "bad/name"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	problem := decode[map[string]any](t, resp)
	assert.NotEmpty(t, problem["detail"])

	// Malformed body
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/folders", strings.NewReader("{not json"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)

	// Missing parent
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "x", "parent_id": "nope"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFileUploadDownloadOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadFile(t, srv, "notes.txt", "uploaded content", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decode[models.File](t, resp)
	assert.Equal(t, "notes.txt", file.Name)
	assert.Equal(t, int64(len("uploaded content")), file.Size)
	assert.Equal(t, testOwner, file.OwnerID)

	dl, err := http.Get(srv.URL + "/api/files/" + file.ID + "/download")
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, fmt.Sprintf("attachment; filename=%q", "notes.txt"), dl.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "uploaded content", string(body))
}

func TestFileUploadIntoFolderAndList(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "docs"})
	folder := decode[models.Folder](t, resp)

	resp = uploadFile(t, srv, "in-folder.txt", "x", folder.ID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = uploadFile(t, srv, "at-root.txt", "y", "")
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/files?folderId="+folder.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inFolder := decode[[]models.File](t, resp)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "in-folder.txt", inFolder[0].Name)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/files", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	atRoot := decode[[]models.File](t, resp)
	require.Len(t, atRoot, 1)
	assert.Equal(t, "at-root.txt", atRoot[0].Name)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/files?search=folder", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]models.File](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, "in-folder.txt", found[0].Name)
}

func TestFileMoveRenameDeleteOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]any{"name": "target"})
	folder := decode[models.Folder](t, resp)
	resp = uploadFile(t, srv, "doc.txt", "body", "")
	file := decode[models.File](t, resp)

	// Move into the folder
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/files/"+file.ID+"/move", map[string]any{"target_folder_id": folder.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[models.File](t, resp)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folder.ID, *moved.FolderID)

	// Rename
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/files/"+file.ID, map[string]any{"name": "doc-v2.txt"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renamed := decode[models.File](t, resp)
	assert.Equal(t, "doc-v2.txt", renamed.Name)

	// Delete
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/files/"+file.ID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	dl, err := http.Get(srv.URL + "/api/files/" + file.ID + "/download")
	require.NoError(t, err)
	dl.Body.Close()
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)
}

func TestFileUploadErrors(t *testing.T) {
	srv := newTestServer(t)

	// Missing file field
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "orphan"))
	require.NoError(t, mw.Close())
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/files/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Forbidden character in name
	resp = uploadFile(t, srv, "bad|name.txt", "x", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown target folder
	resp = uploadFile(t, srv, "ok.txt", "x", "no-such-folder")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLocalEndpointsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// Default directory listing (the test server's temp dir, empty)
	resp, err := http.Get(srv.URL + "/api/local/files")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decode[models.LocalListing](t, resp)
	assert.NotEmpty(t, listing.CurrentPath)
	assert.Empty(t, listing.Items)

	// Missing path on download
	resp, err = http.Get(srv.URL + "/api/local/download")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unreadable path on listing
	resp, err = http.Get(srv.URL + "/api/local/files?path=/no/such/dir")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
