package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivehub/internal/blob"
	"drivehub/internal/domain"
	"drivehub/internal/domain/models"
	"drivehub/internal/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

type fixture struct {
	folders *memory.FolderRepository
	files   *memory.FileRepository
	blobs   *blob.MemoryStore
	folder  *FolderService
	file    *FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		folders: memory.NewFolderRepository(),
		files:   memory.NewFileRepository(),
		blobs:   blob.NewMemoryStore(),
	}
	logger := testLogger()
	f.file = NewFileService(f.files, f.folders, f.blobs, logger)
	f.folder = NewFolderService(f.folders, f.file, logger)
	return f
}

func (f *fixture) mustCreateFolder(t *testing.T, name string, parentID *string, ownerID string) *models.Folder {
	t.Helper()
	folder, err := f.folder.Create(context.Background(), CreateFolderRequest{
		Name:     name,
		ParentID: parentID,
		OwnerID:  ownerID,
	})
	require.NoError(t, err)
	return folder
}

func (f *fixture) mustUpload(t *testing.T, name, content string, folderID *string, ownerID string) *models.File {
	t.Helper()
	file, err := f.file.Upload(context.Background(), UploadFileRequest{
		Name:     name,
		FolderID: folderID,
		OwnerID:  ownerID,
		Content:  strings.NewReader(content),
		Size:     int64(len(content)),
		MimeType: "text/plain",
	})
	require.NoError(t, err)
	return file
}

func TestFileUploadAndDownloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file := f.mustUpload(t, "notes.txt", "meeting notes", nil, "owner-1")
	assert.Equal(t, "owner-1/"+file.ID, file.Path)
	assert.Equal(t, int64(13), file.Size)
	assert.Equal(t, "text/plain", file.MimeType)
	assert.Nil(t, file.FolderID)

	got, rc, err := f.file.Download(ctx, file.ID, "owner-1")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, file.ID, got.ID)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "meeting notes", string(content))
}

func TestFileUploadDefaultsMimeType(t *testing.T) {
	f := newFixture(t)

	file, err := f.file.Upload(context.Background(), UploadFileRequest{
		Name:    "blob.bin",
		OwnerID: "owner-1",
		Content: strings.NewReader("data"),
		Size:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", file.MimeType)
}

func TestFileUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UploadFileRequest
	}{
		{"empty name", UploadFileRequest{Name: "", OwnerID: "owner-1", Content: strings.NewReader("x")}},
		{"forbidden char", UploadFileRequest{Name: "bad/name.txt", OwnerID: "owner-1", Content: strings.NewReader("x")}},
		{"missing owner", UploadFileRequest{Name: "ok.txt", Content: strings.NewReader("x")}},
		{"negative size", UploadFileRequest{Name: "ok.txt", OwnerID: "owner-1", Size: -1, Content: strings.NewReader("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.file.Upload(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	// Nothing reached the blob store
	assert.Equal(t, 0, f.blobs.Len())
}

func TestFileUploadIntoMissingFolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.file.Upload(context.Background(), UploadFileRequest{
		Name:     "notes.txt",
		FolderID: strPtr("no-such-folder"),
		OwnerID:  "owner-1",
		Content:  strings.NewReader("x"),
		Size:     1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestFileUploadIntoForeignFolder(t *testing.T) {
	f := newFixture(t)
	foreign := f.mustCreateFolder(t, "theirs", nil, "owner-2")

	_, err := f.file.Upload(context.Background(), UploadFileRequest{
		Name:     "notes.txt",
		FolderID: &foreign.ID,
		OwnerID:  "owner-1",
		Content:  strings.NewReader("x"),
		Size:     1,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFileOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.mustUpload(t, "secret.txt", "classified", nil, "owner-1")

	_, err := f.file.Get(ctx, file.ID, "owner-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.file.Download(ctx, file.ID, "owner-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.file.Rename(ctx, file.ID, "stolen.txt", "owner-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.file.Delete(ctx, file.ID, "owner-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Still intact for its owner
	got, err := f.file.Get(ctx, file.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "secret.txt", got.Name)
}

func TestFileRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.mustUpload(t, "draft.txt", "x", nil, "owner-1")

	renamed, err := f.file.Rename(ctx, file.ID, "final.txt", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "final.txt", renamed.Name)
	assert.Equal(t, file.Path, renamed.Path)

	// Invalid names leave the stored file untouched
	_, err = f.file.Rename(ctx, file.ID, "bad:name", "owner-1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.file.Get(ctx, file.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "final.txt", got.Name)
}

func TestFileMoveBetweenFolders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f1 := f.mustCreateFolder(t, "first", nil, "owner-1")
	f2 := f.mustCreateFolder(t, "second", nil, "owner-1")
	file := f.mustUpload(t, "doc.txt", "body", &f1.ID, "owner-1")

	moved, err := f.file.Move(ctx, file.ID, &f2.ID, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, f2.ID, *moved.FolderID)
	assert.Equal(t, file.Path, moved.Path)

	inSecond, err := f.file.List(ctx, ListFilesRequest{FolderID: &f2.ID, OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, inSecond, 1)

	inFirst, err := f.file.List(ctx, ListFilesRequest{FolderID: &f1.ID, OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Empty(t, inFirst)

	// Content survives the move
	_, rc, err := f.file.Download(ctx, file.ID, "owner-1")
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "body", string(content))
}

func TestFileMoveToRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	folder := f.mustCreateFolder(t, "inbox", nil, "owner-1")
	file := f.mustUpload(t, "doc.txt", "x", &folder.ID, "owner-1")

	moved, err := f.file.Move(ctx, file.ID, nil, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)
}

func TestFileDeleteRemovesBlobAndMetadata(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.mustUpload(t, "doc.txt", "x", nil, "owner-1")

	require.NoError(t, f.file.Delete(ctx, file.ID, "owner-1"))

	_, err := f.file.Get(ctx, file.ID, "owner-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.blobs.Len())
}

// failingDeleteStore wraps a Store and fails every Delete.
type failingDeleteStore struct {
	blob.Store
}

func (s failingDeleteStore) Delete(ctx context.Context, key string) error {
	return errors.New("backend unavailable")
}

func TestFileDeleteAbortsWhenBlobDeleteFails(t *testing.T) {
	ctx := context.Background()
	files := memory.NewFileRepository()
	folders := memory.NewFolderRepository()
	blobs := failingDeleteStore{Store: blob.NewMemoryStore()}
	svc := NewFileService(files, folders, blobs, testLogger())

	file, err := svc.Upload(ctx, UploadFileRequest{
		Name:    "doc.txt",
		OwnerID: "owner-1",
		Content: strings.NewReader("x"),
		Size:    1,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, file.ID, "owner-1")
	require.Error(t, err)

	// Metadata survives the failed blob deletion
	got, err := svc.Get(ctx, file.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "doc.txt", got.Name)
}

func TestFileListSearchIgnoresFolderScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	folder := f.mustCreateFolder(t, "reports", nil, "owner-1")
	f.mustUpload(t, "annual-report.pdf", "x", &folder.ID, "owner-1")
	f.mustUpload(t, "report-notes.txt", "x", nil, "owner-1")
	f.mustUpload(t, "photo.png", "x", nil, "owner-1")

	got, err := f.file.List(ctx, ListFilesRequest{
		FolderID: &folder.ID,
		OwnerID:  "owner-1",
		Search:   "report",
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFileListEmptyFolderReturnsEmptySlice(t *testing.T) {
	f := newFixture(t)

	got, err := f.file.List(context.Background(), ListFilesRequest{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileDownloadMissingBlob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.mustUpload(t, "doc.txt", "x", nil, "owner-1")

	require.NoError(t, f.blobs.Delete(ctx, file.Path))

	_, _, err := f.file.Download(ctx, file.ID, "owner-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
