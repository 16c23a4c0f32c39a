package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobStores(t *testing.T) map[string]BlobRepository {
	t.Helper()
	fsRepo, err := NewFSBlobRepository(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return map[string]BlobRepository{
		"db": NewBlobRepository(newTestDB(t)),
		"fs": fsRepo,
	}
}

func TestBlobRepository_CreateIfAbsent_Idempotent(t *testing.T) {
	for name, r := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// первая вставка — created=true
			created, err := r.CreateIfAbsent(ctx, "b1.jpg", []byte{1, 2})
			assert.NoError(t, err)
			assert.True(t, created)

			// повторная — created=false, содержимое не перезаписывается
			created, err = r.CreateIfAbsent(ctx, "b1.jpg", []byte{9})
			assert.NoError(t, err)
			assert.False(t, created)

			data, err := r.Get(ctx, "b1.jpg")
			assert.NoError(t, err)
			assert.Equal(t, []byte{1, 2}, data)
		})
	}
}

func TestBlobRepository_GetAndDelete(t *testing.T) {
	for name, r := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := r.Get(ctx, "missing.png")
			assert.ErrorIs(t, err, ErrBlobNotFound)

			_, err = r.CreateIfAbsent(ctx, "b2.png", []byte{7})
			require.NoError(t, err)
			assert.NoError(t, r.Delete(ctx, "b2.png"))
			_, err = r.Get(ctx, "b2.png")
			assert.ErrorIs(t, err, ErrBlobNotFound)

			// удаление отсутствующего файла — не ошибка
			assert.NoError(t, r.Delete(ctx, "b2.png"))
		})
	}
}

func TestFSBlobRepository_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFSBlobRepository(dir)
	require.NoError(t, err)
	ctx := context.Background()

	for _, ref := range []string{"", "../x", "a/b", ".hidden"} {
		_, err := r.CreateIfAbsent(ctx, ref, []byte{1})
		assert.ErrorIs(t, err, ErrInvalidBlobRef, ref)
	}
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestFSBlobRepository_CanceledContext(t *testing.T) {
	r, err := NewFSBlobRepository(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.CreateIfAbsent(ctx, "x.jpg", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, r.Delete(ctx, "x.jpg"), context.Canceled)
}
