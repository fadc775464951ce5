package uploads

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/pkg/storage"
)

type fakeStore struct {
	lastKey         string
	lastContentType string
	lastExpires     time.Duration
}

func (f *fakeStore) PresignPut(_ context.Context, key, contentType string, expires time.Duration) (string, error) {
	f.lastKey = key
	f.lastContentType = contentType
	f.lastExpires = expires
	return "https://bucket.example.com/" + key + "?signature=abc", nil
}

func (f *fakeStore) List(context.Context, string) ([]storage.Object, error) { return nil, nil }
func (f *fakeStore) Delete(context.Context, string) error                  { return nil }

func TestRequestSlot(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store, "https://images.example.com/", 5*time.Minute, zap.NewNop())

	slot, err := service.RequestSlot(context.Background(), "photo.jpg", "image/jpeg", "lost")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(store.lastKey, "uploads/lost/"))
	assert.True(t, strings.HasSuffix(store.lastKey, ".jpg"))
	assert.Equal(t, "image/jpeg", store.lastContentType)
	assert.Equal(t, 5*time.Minute, store.lastExpires)

	assert.Contains(t, slot.UploadURL, "signature=")
	// Trailing slash on the base URL must not double up.
	assert.Equal(t, "https://images.example.com/"+store.lastKey, slot.FileURL)
}

func TestRequestSlotKeysNeverCollide(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store, "https://images.example.com", time.Minute, zap.NewNop())

	first, err := service.RequestSlot(context.Background(), "photo.jpg", "image/jpeg", "found")
	require.NoError(t, err)
	second, err := service.RequestSlot(context.Background(), "photo.jpg", "image/jpeg", "found")
	require.NoError(t, err)

	assert.NotEqual(t, first.FileURL, second.FileURL)
}

func TestRequestSlotValidation(t *testing.T) {
	service := NewService(&fakeStore{}, "https://images.example.com", time.Minute, zap.NewNop())

	_, err := service.RequestSlot(context.Background(), "", "image/jpeg", "lost")
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = service.RequestSlot(context.Background(), "photo.jpg", "", "lost")
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = service.RequestSlot(context.Background(), "photo.jpg", "image/jpeg", "")
	assert.ErrorIs(t, err, ErrMissingParams)
}
