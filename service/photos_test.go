package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/storage"
)

func newTestService(t *testing.T) (*PhotoService, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := storage.NewLocalBlobStore(dir, zap.NewNop())
	require.NoError(t, err)
	catalog := storage.NewFileCatalog(filepath.Join(t.TempDir(), "photos.json"), zap.NewNop())
	return &PhotoService{Blobs: blobs, Catalog: catalog, Log: zap.NewNop()}, dir
}

// flakyBlobStore fails selected Put calls and records Delete calls.
type flakyBlobStore struct {
	inner     storage.BlobStore
	failPuts  map[int]bool
	putCalls  int
	deleteErr error
	deleted   []string
}

func (f *flakyBlobStore) Put(nameHint string, r io.Reader) (string, error) {
	call := f.putCalls
	f.putCalls++
	if f.failPuts[call] {
		return "", &storage.WriteError{Path: nameHint, Err: errors.New("injected write failure")}
	}
	if f.inner != nil {
		return f.inner.Put(nameHint, r)
	}
	return "key-" + nameHint, nil
}

func (f *flakyBlobStore) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.inner != nil {
		return f.inner.Delete(key)
	}
	return nil
}

// failingCatalog rejects every insert.
type failingCatalog struct {
	storage.Catalog
	insertErr error
}

func (c *failingCatalog) Insert(ctx context.Context, photo model.Photo) error {
	return c.insertErr
}

func TestUploadBatchInvalidSectionRejectsWholeBatch(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	items := []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
		{Name: "b.jpg", Data: strings.NewReader("b")},
	}
	_, err := svc.UploadBatch(ctx, "section3", items)
	assert.ErrorIs(t, err, model.ErrInvalidSection)

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected batch must not touch the catalog")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected batch must not write blobs")
}

func TestUploadBatchSameNameGetsDistinctIDsAndKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	items := []UploadItem{
		{Name: "photo.jpg", Data: strings.NewReader("one")},
		{Name: "photo.jpg", Data: strings.NewReader("two")},
	}
	result, err := svc.UploadBatch(ctx, model.SectionOne, items)
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 2)
	assert.Empty(t, result.Failed)

	assert.NotEqual(t, result.Succeeded[0].ID, result.Succeeded[1].ID)
	assert.NotEqual(t, result.Succeeded[0].URL, result.Succeeded[1].URL)
}

func TestUploadBatchBlobFailureSkipsItemOnly(t *testing.T) {
	svc, _ := newTestService(t)
	blobs := &flakyBlobStore{inner: svc.Blobs, failPuts: map[int]bool{1: true}}
	svc.Blobs = blobs
	ctx := context.Background()

	items := []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
		{Name: "b.jpg", Data: strings.NewReader("b")},
		{Name: "c.jpg", Data: strings.NewReader("c")},
	}
	result, err := svc.UploadBatch(ctx, model.SectionOne, items)
	require.NoError(t, err, "one bad item must not fail the batch")

	require.Len(t, result.Succeeded, 2)
	assert.Equal(t, "a.jpg", result.Succeeded[0].Name)
	assert.Equal(t, "c.jpg", result.Succeeded[1].Name)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b.jpg", result.Failed[0].Name)
	assert.NotEmpty(t, result.Failed[0].Reason)

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUploadBatchCatalogFailureDiscardsBlob(t *testing.T) {
	svc, dir := newTestService(t)
	svc.Catalog = &failingCatalog{Catalog: svc.Catalog, insertErr: errors.New("catalog down")}
	ctx := context.Background()

	result, err := svc.UploadBatch(ctx, model.SectionOne, []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "blob must be discarded when its catalog insert fails")
}

func TestUploadBatchStopsOnCancelledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.UploadBatch(ctx, model.SectionOne, []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Succeeded)
}

func TestAddExternalKeepsProviderFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.AddExternal(ctx, model.Photo{
		ID:           "imgbb-1",
		Name:         "a.jpg",
		URL:          "https://i.example.com/a.jpg",
		Section:      model.SectionTwo,
		DisplayURL:   "https://i.example.com/display/a.jpg",
		DeleteToken:  "tok-123",
		ThumbnailURL: "https://i.example.com/thumb/a.jpg",
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := svc.Catalog.Find(ctx, "imgbb-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", found.DeleteToken)
	assert.Equal(t, "https://i.example.com/display/a.jpg", found.DisplayURL)
}

func TestAddExternalInvalidSection(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddExternal(context.Background(), model.Photo{
		ID:      "x",
		Name:    "a.jpg",
		URL:     "https://i.example.com/a.jpg",
		Section: "balcony",
	})
	assert.ErrorIs(t, err, model.ErrInvalidSection)
}

func TestDeleteNotFoundLeavesCatalogUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadBatch(ctx, model.SectionOne, []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	result, err := svc.UploadBatch(ctx, model.SectionOne, []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)

	require.NoError(t, svc.Delete(ctx, result.Succeeded[0].ID))

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteBlobFailureStillRemovesRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.UploadBatch(ctx, model.SectionOne, []UploadItem{
		{Name: "a.jpg", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)

	blobs := &flakyBlobStore{deleteErr: errors.New("injected delete failure")}
	svc.Blobs = blobs

	require.NoError(t, svc.Delete(ctx, result.Succeeded[0].ID))

	assert.Len(t, blobs.deleted, 1, "exactly one blob removal must be attempted")

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "catalog removal is authoritative")
}

func TestDeleteExternalRecordSkipsBlobStore(t *testing.T) {
	svc, _ := newTestService(t)
	blobs := &flakyBlobStore{}
	svc.Blobs = blobs
	ctx := context.Background()

	_, err := svc.AddExternal(ctx, model.Photo{
		ID:      "imgbb-1",
		Name:    "a.jpg",
		URL:     "https://i.example.com/a.jpg",
		Section: model.SectionOne,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "imgbb-1"))
	assert.Empty(t, blobs.deleted, "external records have no local blob to remove")
}

func TestDeleteTraversalURLCannotEscapeBlobDir(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	// A crafted external record can claim any path under /uploads/,
	// including one that climbs out of the blob directory.
	victim := filepath.Join(filepath.Dir(dir), "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o644))

	_, err := svc.AddExternal(ctx, model.Photo{
		ID:      "evil",
		Name:    "victim.txt",
		URL:     "/uploads/../victim.txt",
		Section: model.SectionOne,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "evil"))

	_, err = os.Stat(victim)
	assert.NoError(t, err, "file outside the blob directory must survive the delete")

	all, err := svc.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "the catalog record itself is still removed")
}

func TestListBySection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i, photo := range []model.Photo{
		{ID: "s1-old", Name: "a.jpg", URL: "/uploads/a.jpg", Section: model.SectionOne},
		{ID: "s2", Name: "b.jpg", URL: "/uploads/b.jpg", Section: model.SectionTwo},
		{ID: "s1-new", Name: "c.jpg", URL: "/uploads/c.jpg", Section: model.SectionOne},
	} {
		photo.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, svc.Catalog.Insert(ctx, photo))
	}

	photos, err := svc.List(ctx, model.SectionOne)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "s1-new", photos[0].ID)
	assert.Equal(t, "s1-old", photos[1].ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
