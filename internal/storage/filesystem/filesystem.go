// Package filesystem implements a storage backend rooted at a directory on
// the local disk. Virtual paths are confined to the root; a session can never
// traverse above it.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/developerfred/libunftp/internal/storage"
)

// Backend serves files from Root.
type Backend struct {
	root string
}

var _ storage.Backend = (*Backend)(nil)

// New constructs a Backend rooted at root. The directory must already exist.
func New(root string) (*Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, errors.New("storage root is not a directory")
	}
	return &Backend{root: abs}, nil
}

// Root returns the absolute root directory served by this backend.
func (b *Backend) Root() string {
	return b.root
}

// Features reports restart (REST) support.
func (b *Backend) Features() storage.Feature {
	return storage.FeatureRestart
}

// resolve maps a virtual path onto the real filesystem, refusing anything
// that would escape the root.
func (b *Backend) resolve(vpath string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(vpath, "\\", "/"))
	real := filepath.Join(b.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	if real != b.root && !strings.HasPrefix(real, b.root+string(filepath.Separator)) {
		return "", storage.NewError(storage.KindBadFileName, nil)
	}
	return real, nil
}

// Stat returns metadata for the entry at path.
func (b *Backend) Stat(ctx context.Context, vpath string) (storage.FileInfo, error) {
	real, err := b.resolve(vpath)
	if err != nil {
		return storage.FileInfo{}, err
	}
	fi, err := os.Stat(real)
	if err != nil {
		return storage.FileInfo{}, mapOSError(err)
	}
	return toFileInfo(fi), nil
}

// List returns the entries of the directory at path.
func (b *Backend) List(ctx context.Context, vpath string) ([]storage.FileInfo, error) {
	real, err := b.resolve(vpath)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(real)
	if err != nil {
		return nil, mapOSError(err)
	}
	out := make([]storage.FileInfo, 0, len(entries))
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info; skip it.
			continue
		}
		out = append(out, toFileInfo(fi))
	}
	return out, nil
}

// Open returns a reader over the file at path, positioned at offset.
func (b *Backend) Open(ctx context.Context, vpath string, offset int64) (io.ReadCloser, error) {
	real, err := b.resolve(vpath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(real)
	if err != nil {
		return nil, mapOSError(err)
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, storage.NewError(storage.KindLocalError, err)
		}
	}
	return f, nil
}

// Put writes r to the file at path starting at offset.
func (b *Backend) Put(ctx context.Context, vpath string, r io.Reader, offset int64) (int64, error) {
	real, err := b.resolve(vpath)
	if err != nil {
		return 0, err
	}

	flags := os.O_WRONLY | os.O_CREATE
	if offset == 0 {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(real, flags, 0o644)
	if err != nil {
		return 0, mapOSError(err)
	}
	defer func() { _ = f.Close() }()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return 0, storage.NewError(storage.KindLocalError, err)
		}
	}

	n, err := io.Copy(f, r)
	if err != nil {
		return n, mapOSError(err)
	}
	return n, nil
}

// Del removes the file at path.
func (b *Backend) Del(ctx context.Context, vpath string) error {
	real, err := b.resolve(vpath)
	if err != nil {
		return err
	}
	fi, err := os.Stat(real)
	if err != nil {
		return mapOSError(err)
	}
	if fi.IsDir() {
		return storage.NewError(storage.KindPermanentUnavailable, errors.New("is a directory"))
	}
	if err := os.Remove(real); err != nil {
		return mapOSError(err)
	}
	return nil
}

// Mkd creates the directory at path.
func (b *Backend) Mkd(ctx context.Context, vpath string) error {
	real, err := b.resolve(vpath)
	if err != nil {
		return err
	}
	if err := os.Mkdir(real, 0o755); err != nil {
		return mapOSError(err)
	}
	return nil
}

// Rmd removes the directory at path.
func (b *Backend) Rmd(ctx context.Context, vpath string) error {
	real, err := b.resolve(vpath)
	if err != nil {
		return err
	}
	fi, err := os.Stat(real)
	if err != nil {
		return mapOSError(err)
	}
	if !fi.IsDir() {
		return storage.NewError(storage.KindPermanentUnavailable, errors.New("not a directory"))
	}
	if err := os.Remove(real); err != nil {
		return mapOSError(err)
	}
	return nil
}

// Rename moves from to to.
func (b *Backend) Rename(ctx context.Context, from, to string) error {
	realFrom, err := b.resolve(from)
	if err != nil {
		return err
	}
	realTo, err := b.resolve(to)
	if err != nil {
		return err
	}
	if err := os.Rename(realFrom, realTo); err != nil {
		return mapOSError(err)
	}
	return nil
}

func toFileInfo(fi fs.FileInfo) storage.FileInfo {
	return storage.FileInfo{
		Name:    fi.Name(),
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime().UTC(),
		IsDir:   fi.IsDir(),
	}
}

// mapOSError translates an operating system error into the storage error
// taxonomy so the server replies with the right code.
func mapOSError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return storage.NewError(storage.KindPermanentUnavailable, err)
	case errors.Is(err, fs.ErrPermission):
		return storage.NewError(storage.KindPermissionDenied, err)
	case errors.Is(err, syscall.ENOSPC):
		return storage.NewError(storage.KindInsufficientSpace, err)
	case errors.Is(err, syscall.EDQUOT):
		return storage.NewError(storage.KindExceededAllocation, err)
	case errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, syscall.EINVAL):
		return storage.NewError(storage.KindBadFileName, err)
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.EAGAIN):
		return storage.NewError(storage.KindTransientUnavailable, err)
	default:
		return storage.NewError(storage.KindLocalError, err)
	}
}
