package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidKey = errors.New("invalid blob key")

// BlobStore holds the raw bytes of uploaded photos. Keys are unique per
// write, so stored blobs are never mutated in place.
type BlobStore interface {
	Put(nameHint string, r io.Reader) (string, error)
	Delete(key string) error
}

type LocalBlobStore struct {
	Directory string
	Log       *zap.Logger
}

func NewLocalBlobStore(directory string, log *zap.Logger) (*LocalBlobStore, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, &WriteError{Path: directory, Err: err}
	}
	return &LocalBlobStore{Directory: directory, Log: log}, nil
}

// Put streams r into a new file named {uuid}-{sanitized nameHint} and
// returns the file name as the storage key. The uuid prefix guarantees
// two uploads with the same original name never collide. Data goes to a
// temp file first and is renamed into place only after a successful
// write and fsync, so a failed upload never leaves a truncated blob
// addressable.
func (s *LocalBlobStore) Put(nameHint string, r io.Reader) (string, error) {
	key := uuid.NewString() + "-" + sanitizeFileName(nameHint)
	fullPath := filepath.Join(s.Directory, key)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", &WriteError{Path: tmpPath, Err: err}
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", &WriteError{Path: tmpPath, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", &WriteError{Path: tmpPath, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &WriteError{Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", &WriteError{Path: fullPath, Err: err}
	}

	s.Log.Info("blob stored", zap.String("key", key))
	return key, nil
}

// Delete removes the blob for key. A key that is already gone counts as
// success: the catalog is the source of truth during cleanup, and the
// blob store must not block it over bytes that no longer exist.
//
// Keys generated by Put never contain path separators, so a key that
// would resolve outside the blob directory is rejected outright. URLs
// on external-provider records are caller-supplied and flow into
// deletes, so this cannot rely on the caller being well-behaved.
func (s *LocalBlobStore) Delete(key string) error {
	if key == "" || key == "." || key == ".." || key != filepath.Base(key) {
		return &WriteError{Path: key, Err: errInvalidKey}
	}

	err := os.Remove(filepath.Join(s.Directory, key))
	if err != nil && !os.IsNotExist(err) {
		return &WriteError{Path: key, Err: err}
	}
	return nil
}

// sanitizeFileName keeps letters, digits, dots and dashes and replaces
// everything else with an underscore. Display names come straight from
// the browser and may contain path separators or anything else.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
