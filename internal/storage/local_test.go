package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8480/storage")
	require.NoError(t, err)

	ctx := context.Background()
	path := "user-1/post-1/1700000000_photo.jpg"

	require.NoError(t, store.Put(ctx, path, strings.NewReader("jpeg bytes"), "image/jpeg"))

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(raw))

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_DeleteMissingIsNoError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8480/storage")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "nope/never-existed.png"))
}

func TestLocalStore_Overwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8480/storage")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a/b.txt", strings.NewReader("first"), "text/plain"))
	require.NoError(t, store.Put(ctx, "a/b.txt", strings.NewReader("second"), "text/plain"))

	raw, err := os.ReadFile(filepath.Join(store.root, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8480/storage")
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, store.Put(ctx, "../escape.txt", strings.NewReader("x"), "text/plain"))
	assert.Error(t, store.Delete(ctx, "../../etc/passwd"))
}

func TestPublicURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8480/storage/")
	require.NoError(t, err)

	assert.Equal(t,
		"http://localhost:8480/storage/u/p/1_f.png",
		store.PublicURL("u/p/1_f.png"),
	)
	assert.Equal(t,
		"http://localhost:8480/storage/u/p/1_f.png",
		store.PublicURL("/u/p/1_f.png"),
	)
}
