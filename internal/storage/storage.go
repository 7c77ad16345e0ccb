// Package storage defines the backend abstraction the FTP server reads and
// writes through. Paths handed to a Backend are always absolute virtual paths
// ("/" rooted, forward slashes, cleaned); backends decide what they map to.
package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// Feature is a bit set of optional backend capabilities, surfaced to clients
// through the FEAT reply.
type Feature uint32

const (
	// FeatureRestart means Open and Put honor a nonzero starting offset
	// (REST support).
	FeatureRestart Feature = 1 << iota
)

// Has reports whether all bits in want are set.
func (f Feature) Has(want Feature) bool {
	return f&want == want
}

// FileInfo describes a single entry in a backend.
type FileInfo struct {
	// Name is the base name of the entry.
	Name string
	// Size in bytes. Zero for directories.
	Size int64
	// Mode is used for LIST rendering only.
	Mode fs.FileMode
	// ModTime is the last modification time, UTC.
	ModTime time.Time
	// IsDir reports whether the entry is a directory.
	IsDir bool
	// Owner and Group are display names for LIST rendering. Backends
	// without ownership report "ftp".
	Owner string
	Group string
}

// Backend is the storage interface the control and data channels drive.
//
// Every method returns *Error on failure so the server can map the outcome
// onto the right FTP reply code; any other error is treated as a local error
// (451).
type Backend interface {
	// Stat returns metadata for the entry at path.
	Stat(ctx context.Context, path string) (FileInfo, error)

	// List returns the entries of the directory at path.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Open returns a reader over the file at path, positioned at offset.
	Open(ctx context.Context, path string, offset int64) (io.ReadCloser, error)

	// Put writes r to the file at path starting at offset, creating the
	// file if needed. It returns the number of bytes written.
	Put(ctx context.Context, path string, r io.Reader, offset int64) (int64, error)

	// Del removes the file at path.
	Del(ctx context.Context, path string) error

	// Mkd creates the directory at path.
	Mkd(ctx context.Context, path string) error

	// Rmd removes the directory at path.
	Rmd(ctx context.Context, path string) error

	// Rename moves from to to.
	Rename(ctx context.Context, from, to string) error

	// Features reports the optional capabilities this backend supports.
	Features() Feature
}
