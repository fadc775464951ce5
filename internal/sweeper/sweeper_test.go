package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/internal/items"
	"foundlink/lost-found-portal/portal-backend/pkg/storage"
)

type fakeStore struct {
	objects []storage.Object
	deleted []string
}

func (f *fakeStore) PresignPut(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

func (f *fakeStore) List(context.Context, string) ([]storage.Object, error) {
	return f.objects, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeRepo struct {
	items.Repository
	list []items.Item
}

func (f *fakeRepo) ListItems(context.Context) ([]items.Item, error) {
	return f.list, nil
}

func TestRunDeletesOnlyStaleOrphans(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now().Add(-time.Minute)

	store := &fakeStore{objects: []storage.Object{
		{Key: "uploads/lost/referenced.jpg", LastModified: old},
		{Key: "uploads/lost/orphan.jpg", LastModified: old},
		{Key: "uploads/found/in-flight.jpg", LastModified: fresh},
	}}
	repo := &fakeRepo{list: []items.Item{
		{ItemID: "i1", ImageURL: "https://images.example.com/uploads/lost/referenced.jpg"},
	}}

	s := New(store, repo, "uploads/", "https://images.example.com", 24*time.Hour, zap.NewNop())
	deleted, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"uploads/lost/orphan.jpg"}, store.deleted)
}

func TestRunKeepsReferencedObjectsUnderPathStyleBase(t *testing.T) {
	// Path-style endpoints put the bucket in the URL path; the key must still
	// match what the bucket listing returns.
	old := time.Now().Add(-48 * time.Hour)

	store := &fakeStore{objects: []storage.Object{
		{Key: "uploads/lost/referenced.jpg", LastModified: old},
		{Key: "uploads/lost/orphan.jpg", LastModified: old},
	}}
	repo := &fakeRepo{list: []items.Item{
		{ItemID: "i1", ImageURL: "http://localhost:9000/foundlink-item-images/uploads/lost/referenced.jpg"},
	}}

	s := New(store, repo, "uploads/", "http://localhost:9000/foundlink-item-images", 24*time.Hour, zap.NewNop())
	deleted, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"uploads/lost/orphan.jpg"}, store.deleted)
}

func TestRunSkipsSweepWhenURLsDoNotMatchBase(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)

	store := &fakeStore{objects: []storage.Object{
		{Key: "uploads/lost/referenced.jpg", LastModified: old},
	}}
	repo := &fakeRepo{list: []items.Item{
		{ItemID: "i1", ImageURL: "https://old-cdn.example.com/uploads/lost/referenced.jpg"},
	}}

	s := New(store, repo, "uploads/", "https://images.example.com", 24*time.Hour, zap.NewNop())
	deleted, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, store.deleted)
}

func TestRunEmptyBucket(t *testing.T) {
	s := New(&fakeStore{}, &fakeRepo{}, "uploads/", "https://images.example.com", time.Hour, zap.NewNop())

	deleted, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestObjectKey(t *testing.T) {
	s := New(&fakeStore{}, &fakeRepo{}, "uploads/", "https://images.example.com", time.Hour, zap.NewNop())

	key, ok := s.objectKey("https://images.example.com/uploads/lost/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "uploads/lost/a.jpg", key)

	_, ok = s.objectKey("https://elsewhere.example.com/uploads/lost/a.jpg")
	assert.False(t, ok)
	_, ok = s.objectKey("https://images.example.com/")
	assert.False(t, ok)
	_, ok = s.objectKey("not a url")
	assert.False(t, ok)

	pathStyle := New(&fakeStore{}, &fakeRepo{}, "uploads/", "http://localhost:9000/foundlink-item-images/", time.Hour, zap.NewNop())
	key, ok = pathStyle.objectKey("http://localhost:9000/foundlink-item-images/uploads/found/b.png")
	require.True(t, ok)
	assert.Equal(t, "uploads/found/b.png", key)
}
