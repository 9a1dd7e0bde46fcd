// Package service holds the upload, delete and list logic sitting
// between the HTTP handlers and the storage backends.
package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/storage"
)

// uploadURLPrefix maps blob storage keys to the public path the gallery
// resolves them under. Only records whose URL carries this prefix have
// locally stored bytes; everything else lives on the external host.
const uploadURLPrefix = "/uploads/"

type UploadItem struct {
	Name string
	Data io.Reader
}

type ItemError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadResult reports a batch outcome per item. Uploads are
// independent units: one failed item never fails the batch.
type UploadResult struct {
	Succeeded []model.Photo `json:"succeeded"`
	Failed    []ItemError   `json:"failed"`
}

type PhotoService struct {
	Blobs   storage.BlobStore
	Catalog storage.Catalog
	Log     *zap.Logger
}

// UploadBatch stores each item's bytes and inserts its catalog record,
// in submission order, committing per item. An invalid section rejects
// the whole batch before anything is written. A blob write failure
// skips that item and the batch continues. A catalog insert failure
// after a successful blob write discards the just-written blob
// best-effort so it does not linger as an orphan.
//
// A cancelled context stops the batch before the next unprocessed item;
// items already committed stay committed.
func (s *PhotoService) UploadBatch(ctx context.Context, section model.Section, items []UploadItem) (*UploadResult, error) {
	if !section.Valid() {
		return nil, model.ErrInvalidSection
	}

	result := &UploadResult{Succeeded: []model.Photo{}, Failed: []ItemError{}}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		key, err := s.Blobs.Put(item.Name, item.Data)
		if err != nil {
			s.Log.Warn("blob write failed, skipping item",
				zap.String("name", item.Name),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, ItemError{Name: item.Name, Reason: err.Error()})
			continue
		}

		photo := model.Photo{
			ID:        uuid.NewString(),
			Name:      item.Name,
			URL:       uploadURLPrefix + key,
			Section:   section,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.Catalog.Insert(ctx, photo); err != nil {
			s.discardBlob(key)
			result.Failed = append(result.Failed, ItemError{Name: item.Name, Reason: err.Error()})
			continue
		}

		result.Succeeded = append(result.Succeeded, photo)
	}
	return result, nil
}

// AddExternal records a photo already hosted by the external image
// provider. No bytes pass through the blob store; the provider URL and
// its deletion token are all we keep.
func (s *PhotoService) AddExternal(ctx context.Context, photo model.Photo) (*model.Photo, error) {
	if !photo.Section.Valid() {
		return nil, model.ErrInvalidSection
	}
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	if err := s.Catalog.Insert(ctx, photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// Delete removes the photo with the given id. The blob removal is
// best-effort: a lingering catalog entry pointing at missing bytes is a
// broken image in the gallery, while an orphaned blob is invisible and
// reclaimable, so only the catalog removal decides the outcome.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	photo, err := s.Catalog.Find(ctx, id)
	if err != nil {
		return err
	}

	if key, ok := strings.CutPrefix(photo.URL, uploadURLPrefix); ok {
		if err := s.Blobs.Delete(key); err != nil {
			s.Log.Warn("blob delete failed, removing catalog entry anyway",
				zap.String("id", id),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return s.Catalog.Remove(ctx, id)
}

// List returns all photos, most recent first, optionally filtered to
// one section. Every call re-reads the catalog; the admin workflow is
// delete-then-refresh and must never see stale data.
func (s *PhotoService) List(ctx context.Context, section model.Section) ([]model.Photo, error) {
	photos, err := s.Catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if section == "" {
		return photos, nil
	}

	filtered := []model.Photo{}
	for _, p := range photos {
		if p.Section == section {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// discardBlob cleans up a blob whose catalog insert failed. Failure
// here only costs an orphaned file, so it is logged and dropped.
func (s *PhotoService) discardBlob(key string) {
	if err := s.Blobs.Delete(key); err != nil {
		s.Log.Warn("orphaned blob left behind",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
