package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florexport/backend/internal/domain/shared"
)

func TestFilesystemStore_PutAndGet(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("%PDF-1.4 fake invoice")
	err = store.Put(ctx, "invoices/INV-20260310-00042.pdf", payload, "application/pdf")
	require.NoError(t, err)

	got, err := store.Get(ctx, "invoices/INV-20260310-00042.pdf")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFilesystemStore_Put_Overwrites(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.pdf", []byte("v1"), "application/pdf"))
	require.NoError(t, store.Put(ctx, "a.pdf", []byte("v2"), "application/pdf"))

	got, err := store.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestFilesystemStore_Get_NotFound(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing.pdf")

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFilesystemStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.pdf", []byte("x"), "application/pdf")

	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewFilesystemStore_RequiresPath(t *testing.T) {
	_, err := NewFilesystemStore("")
	assert.Error(t, err)
}
