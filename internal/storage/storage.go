// Package storage persists uploaded file content on behalf of the
// document services. Database rows only ever reference paths returned
// from a BlobStore.
package storage

import (
	"io"
	"time"
)

// BlobStore writes uploads in two phases: bytes land in a temporary file
// first, then Promote renames them to their final, version-specific name.
// A failed request therefore never leaves a half-written final file.
type BlobStore interface {
	// SaveTemp streams r into a fresh temporary file and returns its path.
	SaveTemp(r io.Reader, ext string) (string, error)
	// Path returns the path finalName will occupy after Promote, so ledger
	// rows can be written before the rename happens.
	Path(finalName string) string
	// Promote renames a temporary file to finalName inside the store and
	// returns the final path.
	Promote(tempPath, finalName string) (string, error)
	// Remove deletes a file. Removing a missing file is not an error.
	Remove(path string) error
	// Resolve validates that path resolves inside the store and the file
	// exists, returning the absolute path to read from.
	Resolve(path string) (string, error)
	// List returns the paths of all files currently in the store.
	List() ([]string, error)
	// RemoveStaleTemp deletes temporary files older than olderThan and
	// returns how many were removed.
	RemoveStaleTemp(olderThan time.Duration) (int, error)
}
