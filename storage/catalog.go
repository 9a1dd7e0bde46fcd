package storage

import (
	"context"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
)

// Catalog is the metadata store for all known photos. Two backends
// implement it: FileCatalog keeps every record in one JSON document for
// zero-dependency deployments, MongoCatalog keeps one document per
// record. The backend is picked once at startup and never mixed.
type Catalog interface {
	// ListAll returns every record, most recent first.
	ListAll(ctx context.Context) ([]model.Photo, error)

	// Find returns the record with the given id or ErrNotFound.
	Find(ctx context.Context, id string) (*model.Photo, error)

	// Insert adds a new record. It fails with ErrDuplicateID if the id
	// is already present anywhere in the catalog.
	Insert(ctx context.Context, photo model.Photo) error

	// Remove deletes the record with the given id or fails with
	// ErrNotFound.
	Remove(ctx context.Context, id string) error
}
