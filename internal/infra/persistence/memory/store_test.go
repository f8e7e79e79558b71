package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyStoreReportsNothing(t *testing.T) {
	store := New()
	data, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Nil(t, store.Bytes())
}

func TestSaveLoadCopies(t *testing.T) {
	store := New()
	ctx := context.Background()
	payload := []byte(`{"schemaVersion":1}`)
	require.NoError(t, store.Save(ctx, payload))

	// Mutating the caller's slice must not reach the stored copy.
	payload[0] = 'X'
	data, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"schemaVersion":1}`, string(data))

	// Nor must mutating a loaded slice.
	data[0] = 'Y'
	assert.Equal(t, `{"schemaVersion":1}`, string(store.Bytes()))
}

func TestFailureInjection(t *testing.T) {
	store := New()
	ctx := context.Background()
	saveErr := errors.New("disk full")
	loadErr := errors.New("disk gone")

	store.SaveErr = saveErr
	assert.ErrorIs(t, store.Save(ctx, []byte(`{}`)), saveErr)
	assert.Nil(t, store.Bytes(), "failed save must not store data")

	store.SaveErr = nil
	require.NoError(t, store.Save(ctx, []byte(`{}`)))

	store.LoadErr = loadErr
	_, _, err := store.Load(ctx)
	assert.ErrorIs(t, err, loadErr)
}
