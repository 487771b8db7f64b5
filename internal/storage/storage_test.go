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

	"weighbridge-server/internal/storage"
)

func TestDecodeDataURI(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		mediaType, data, err := storage.DecodeDataURI("data:image/png;base64,aGVsbG8=")
		require.NoError(t, err)
		assert.Equal(t, "image/png", mediaType)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("MissingPrefix", func(t *testing.T) {
		_, _, err := storage.DecodeDataURI("aGVsbG8=")
		assert.ErrorIs(t, err, storage.ErrInvalidDataURI)
	})

	t.Run("BadBase64", func(t *testing.T) {
		_, _, err := storage.DecodeDataURI("data:image/jpeg;base64,!!!not-base64")
		assert.ErrorIs(t, err, storage.ErrInvalidDataURI)
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		_, _, err := storage.DecodeDataURI("data:image/jpeg;base64,")
		assert.ErrorIs(t, err, storage.ErrInvalidDataURI)
	})
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalImageStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	name, err := store.Save(ctx, "1st_42", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "img_1st_42_"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	rc, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	other, err := store.Save(ctx, "1st_42", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
	assert.True(t, strings.HasSuffix(other, ".jpg"))

	require.NoError(t, store.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(dir, "uploads", name))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, name), "deleting a missing image is not an error")

	_, err = store.Open("../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "../secret"))
}

func TestMemoryImageStore(t *testing.T) {
	store := storage.NewMemoryImageStore()
	ctx := context.Background()

	name, err := store.Save(ctx, "2nd_7", "image/jpeg", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []string{name}, store.Names())

	rc, err := store.Open(name)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "abc", string(data))

	require.NoError(t, store.Delete(ctx, name))
	assert.Empty(t, store.Names())
	_, err = store.Open(name)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
