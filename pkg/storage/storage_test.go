package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/pkg/storage"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "http://cdn.test/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "products/3/cover.png", strings.NewReader("png-bytes")))

	ok, err := disk.Exists(ctx, "products/3/cover.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Get(ctx, "products/3/cover.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://cdn.test/storage/products/3/cover.png", disk.URL("products/3/cover.png"))

	require.NoError(t, disk.Delete(ctx, "products/3/cover.png"))
	require.NoError(t, disk.Delete(ctx, "products/3/cover.png"))

	_, err = disk.Get(ctx, "products/3/cover.png")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk, err := storage.NewLocal(filepath.Join(root, "public"), "")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "../../escape.txt", strings.NewReader("x")))

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(disk.Root(), "escape.txt"))
	assert.NoError(t, err)
}

func TestManager(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	storage.RegisterDisk("test", disk)

	got, err := storage.Use("test")
	require.NoError(t, err)
	assert.Same(t, disk, got)

	_, err = storage.Use("missing")
	assert.Error(t, err)
}
