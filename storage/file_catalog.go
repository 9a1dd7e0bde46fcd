package storage

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/model"
)

// FileCatalog stores the whole catalog as one JSON array on disk.
// Every mutation is read-whole-document, modify, write-whole-document,
// so all operations are serialized behind a single mutex; without it
// two concurrent inserts can silently drop one record. That makes the
// mutex process-wide by construction: this backend is only safe with a
// single process owning the file.
type FileCatalog struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

func NewFileCatalog(path string, log *zap.Logger) *FileCatalog {
	return &FileCatalog{path: path, log: log}
}

func (c *FileCatalog) ListAll(ctx context.Context) ([]model.Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	photos := c.load()
	sortByCreatedAtDesc(photos)
	return photos, nil
}

func (c *FileCatalog) Find(ctx context.Context, id string) (*model.Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.load() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (c *FileCatalog) Insert(ctx context.Context, photo model.Photo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	photos := c.load()
	for _, p := range photos {
		if p.ID == photo.ID {
			return ErrDuplicateID
		}
	}
	return c.save(append(photos, photo))
}

func (c *FileCatalog) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	photos := c.load()
	for i, p := range photos {
		if p.ID == id {
			return c.save(append(photos[:i], photos[i+1:]...))
		}
	}
	return ErrNotFound
}

// load reads the backing document. A missing file is the first-run case
// and yields an empty catalog. An unparseable file also yields an empty
// catalog so reads keep working, but the corruption is logged rather
// than silently swallowed; the file itself is left untouched until the
// next successful mutation rewrites it.
func (c *FileCatalog) load() []model.Photo {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("catalog document unreadable, treating as empty",
				zap.String("path", c.path),
				zap.Error(err),
			)
		}
		return []model.Photo{}
	}

	var photos []model.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		c.log.Warn("catalog document corrupt, treating as empty",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return []model.Photo{}
	}
	return photos
}

// save rewrites the document atomically: temp file, then rename. A
// failed write never leaves a half-written document at the real path.
func (c *FileCatalog) save(photos []model.Photo) error {
	data, err := json.MarshalIndent(photos, "", "  ")
	if err != nil {
		return &WriteError{Path: c.path, Err: err}
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return &WriteError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: c.path, Err: err}
	}
	return nil
}

// sortByCreatedAtDesc orders most recent first. Array order in the
// document is not meaningful, so the sort happens on every read.
func sortByCreatedAtDesc(photos []model.Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})
}
