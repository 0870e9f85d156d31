package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "geoattend/pkg/domain"
)

func TestSaveRemoveExists(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	userID := id.NewUserID()
	taken := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	path, err := store.Save(userID, "in", taken, []byte("jpeg"))
	require.NoError(t, err)
	assert.True(t, store.Exists(path))
	assert.True(t, strings.HasSuffix(path, ".jpg"))
	assert.Contains(t, path, userID.String())
	assert.Contains(t, path, "_in_")

	require.NoError(t, store.Remove(path))
	assert.False(t, store.Exists(path))
}

func TestRemoveMissingFileIsNoOp(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove("does-not-exist.jpg"))
}

func TestSaveRejectsEmptyPhoto(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(id.NewUserID(), "in", time.Now(), nil)
	assert.Error(t, err)
}
