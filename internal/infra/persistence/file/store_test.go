package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "farm.json"))
	require.NoError(t, err)

	data, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "missing file must not report contents")
	assert.Nil(t, data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.json")
	store, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`{"schemaVersion":1}`)))
	data, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"schemaVersion":1}`, string(data))

	// Overwrite replaces atomically.
	require.NoError(t, store.Save(ctx, []byte(`{"schemaVersion":1,"meta":{}}`)))
	data, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"schemaVersion":1,"meta":{}}`, string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, path, store.Path())
}

func TestNewCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "farm.json")
	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), []byte(`{}`)))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDefaultPath(t *testing.T) {
	store, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "farmcore.json", store.Path())
}
