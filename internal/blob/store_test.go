package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest builds each Store implementation against a fresh backend.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"fs":     fsStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoreSaveOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			content := []byte("hello blob world")
			require.NoError(t, store.Save(ctx, "owner-1/file-1", strings.NewReader(string(content))))

			rc, err := store.Open(ctx, "owner-1/file-1")
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, content, got)
		})
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "k", strings.NewReader("first")))
			require.NoError(t, store.Save(ctx, "k", strings.NewReader("second")))

			rc, err := store.Open(ctx, "k")
			require.NoError(t, err)
			defer rc.Close()
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "second", string(got))
		})
	}
}

func TestStoreOpenMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Open(ctx, "owner-1/nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "owner-1/file-1", strings.NewReader("x")))
			require.NoError(t, store.Delete(ctx, "owner-1/file-1"))

			_, err := store.Open(ctx, "owner-1/file-1")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting again reports not found
			assert.ErrorIs(t, store.Delete(ctx, "owner-1/file-1"), ErrNotFound)
		})
	}
}

func TestStoreMove(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, "a/1", strings.NewReader("content")))
			require.NoError(t, store.Move(ctx, "a/1", "b/deep/2"))

			exists, err := store.Exists(ctx, "a/1")
			require.NoError(t, err)
			assert.False(t, exists)

			rc, err := store.Open(ctx, "b/deep/2")
			require.NoError(t, err)
			defer rc.Close()
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "content", string(got))

			assert.ErrorIs(t, store.Move(ctx, "a/1", "c/3"), ErrNotFound)
		})
	}
}

func TestStoreExistsNeverErrorsOnAbsence(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			exists, err := store.Exists(ctx, "owner-1/absent")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestFSStoreRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/abs/path", "../escape", "a/../../escape"} {
		err := store.Save(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestFSStoreCreatesIntermediateDirs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "owner-1/nested/file", strings.NewReader("x")))

	_, statErr := os.Stat(filepath.Join(root, "owner-1", "nested", "file"))
	assert.NoError(t, statErr)
}

func TestFSStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFSStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "owner/file", strings.NewReader("x")))

	matches, err := filepath.Glob(filepath.Join(root, "owner", ".upload-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
