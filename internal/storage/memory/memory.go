// Package memory implements an ephemeral in-memory storage backend. It backs
// unit tests and throwaway servers; contents are lost when the process exits.
package memory

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/developerfred/libunftp/internal/storage"
)

type node struct {
	dir     bool
	data    []byte
	modTime time.Time
}

// Backend stores a file tree in process memory. Safe for concurrent use.
type Backend struct {
	mu    sync.RWMutex
	nodes map[string]*node
	now   func() time.Time
}

var _ storage.Backend = (*Backend)(nil)

// New constructs an empty Backend containing only the root directory.
func New() *Backend {
	b := &Backend{
		nodes: make(map[string]*node),
		now:   time.Now,
	}
	b.nodes["/"] = &node{dir: true, modTime: b.now().UTC()}
	return b
}

// Features reports restart (REST) support.
func (b *Backend) Features() storage.Feature {
	return storage.FeatureRestart
}

func clean(vpath string) string {
	return path.Clean("/" + vpath)
}

// Stat returns metadata for the entry at path.
func (b *Backend) Stat(ctx context.Context, vpath string) (storage.FileInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := clean(vpath)
	n, ok := b.nodes[p]
	if !ok {
		return storage.FileInfo{}, storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	return b.fileInfo(p, n), nil
}

// List returns the entries of the directory at path.
func (b *Backend) List(ctx context.Context, vpath string) ([]storage.FileInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := clean(vpath)
	n, ok := b.nodes[p]
	if !ok {
		return nil, storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	if !n.dir {
		return nil, storage.NewError(storage.KindPermanentUnavailable, nil)
	}

	var out []storage.FileInfo
	for candidate, cn := range b.nodes {
		if candidate == "/" || path.Dir(candidate) != p || candidate == p {
			continue
		}
		out = append(out, b.fileInfo(candidate, cn))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Open returns a reader over the file at path, positioned at offset.
func (b *Backend) Open(ctx context.Context, vpath string, offset int64) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := clean(vpath)
	n, ok := b.nodes[p]
	if !ok || n.dir {
		return nil, storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	if offset > int64(len(n.data)) {
		return nil, storage.NewError(storage.KindLocalError, nil)
	}
	buf := make([]byte, int64(len(n.data))-offset)
	copy(buf, n.data[offset:])
	return io.NopCloser(bytes.NewReader(buf)), nil
}

// Put writes r to the file at path starting at offset.
func (b *Backend) Put(ctx context.Context, vpath string, r io.Reader, offset int64) (int64, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return 0, storage.NewError(storage.KindLocalError, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := clean(vpath)
	if existing, ok := b.nodes[p]; ok && existing.dir {
		return 0, storage.NewError(storage.KindBadFileName, nil)
	}
	parent, ok := b.nodes[path.Dir(p)]
	if !ok || !parent.dir {
		return 0, storage.NewError(storage.KindPermanentUnavailable, nil)
	}

	var data []byte
	if existing, ok := b.nodes[p]; ok && offset > 0 {
		if offset > int64(len(existing.data)) {
			return 0, storage.NewError(storage.KindLocalError, nil)
		}
		data = append(data, existing.data[:offset]...)
	}
	data = append(data, payload...)
	b.nodes[p] = &node{data: data, modTime: b.now().UTC()}
	return int64(len(payload)), nil
}

// Del removes the file at path.
func (b *Backend) Del(ctx context.Context, vpath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := clean(vpath)
	n, ok := b.nodes[p]
	if !ok || n.dir {
		return storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	delete(b.nodes, p)
	return nil
}

// Mkd creates the directory at path.
func (b *Backend) Mkd(ctx context.Context, vpath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := clean(vpath)
	if _, ok := b.nodes[p]; ok {
		return storage.NewError(storage.KindBadFileName, nil)
	}
	parent, ok := b.nodes[path.Dir(p)]
	if !ok || !parent.dir {
		return storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	b.nodes[p] = &node{dir: true, modTime: b.now().UTC()}
	return nil
}

// Rmd removes the directory at path, which must be empty.
func (b *Backend) Rmd(ctx context.Context, vpath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := clean(vpath)
	if p == "/" {
		return storage.NewError(storage.KindPermissionDenied, nil)
	}
	n, ok := b.nodes[p]
	if !ok || !n.dir {
		return storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	for candidate := range b.nodes {
		if path.Dir(candidate) == p && candidate != p {
			return storage.NewError(storage.KindTransientUnavailable, nil)
		}
	}
	delete(b.nodes, p)
	return nil
}

// Rename moves from to to, carrying children of directories along.
func (b *Backend) Rename(ctx context.Context, from, to string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, dst := clean(from), clean(to)
	n, ok := b.nodes[src]
	if !ok {
		return storage.NewError(storage.KindPermanentUnavailable, nil)
	}
	// A directory cannot be moved onto itself or into its own subtree.
	if dst == src || strings.HasPrefix(dst, src+"/") {
		return storage.NewError(storage.KindBadFileName, nil)
	}
	if _, exists := b.nodes[dst]; exists {
		return storage.NewError(storage.KindBadFileName, nil)
	}
	parent, ok := b.nodes[path.Dir(dst)]
	if !ok || !parent.dir {
		return storage.NewError(storage.KindPermanentUnavailable, nil)
	}

	b.nodes[dst] = n
	delete(b.nodes, src)

	if n.dir {
		prefix := src + "/"
		moved := make(map[string]*node)
		for candidate, cn := range b.nodes {
			if strings.HasPrefix(candidate, prefix) {
				moved[dst+"/"+strings.TrimPrefix(candidate, prefix)] = cn
				delete(b.nodes, candidate)
			}
		}
		for candidate, cn := range moved {
			b.nodes[candidate] = cn
		}
	}
	return nil
}

func (b *Backend) fileInfo(p string, n *node) storage.FileInfo {
	name := path.Base(p)
	if n.dir {
		return storage.FileInfo{
			Name:    name,
			Mode:    fs.ModeDir | 0o755,
			ModTime: n.modTime,
			IsDir:   true,
		}
	}
	return storage.FileInfo{
		Name:    name,
		Size:    int64(len(n.data)),
		Mode:    0o644,
		ModTime: n.modTime,
	}
}
