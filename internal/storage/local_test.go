package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	require.NoError(t, err)

	ref, err := l.Put(context.Background(), "abc_photo.jpg", []byte("image bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, RoutePrefix+"/abc_photo.jpg", ref)

	data, err := os.ReadFile(filepath.Join(dir, "abc_photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestLocalCreatesUploadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	l, err := NewLocal(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, l.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalURLIsIdentity(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	url, err := l.URL(context.Background(), "/uploads/abc_photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc_photo.jpg", url)
	assert.Equal(t, KindLocal, l.Kind())
}
