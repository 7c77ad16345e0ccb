package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/developerfred/libunftp/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(t.TempDir())
	require.NoError(t, err)
	return b
}

func requireKind(t *testing.T, err error, kind storage.ErrorKind) {
	t.Helper()
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kind, serr.Kind)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestPutOpenRoundtrip(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	n, err := b.Put(ctx, "/greeting.txt", strings.NewReader("hello world"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	r, err := b.Open(ctx, "/greeting.txt", 6)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

func TestResolveConfinesToRoot(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	outside := filepath.Dir(b.Root())
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("nope"), 0o600))

	// Traversal is cleaned back inside the root, so the file must not be found.
	_, err := b.Stat(ctx, "/../secret.txt")
	requireKind(t, err, storage.KindPermanentUnavailable)
}

func TestStatMissingFile(t *testing.T) {
	_, err := newBackend(t).Stat(context.Background(), "/nope")
	requireKind(t, err, storage.KindPermanentUnavailable)
}

func TestMkdListDelRmd(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	require.NoError(t, b.Mkd(ctx, "/incoming"))
	_, err := b.Put(ctx, "/incoming/a.txt", strings.NewReader("a"), 0)
	require.NoError(t, err)

	entries, err := b.List(ctx, "/incoming")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)

	require.NoError(t, b.Del(ctx, "/incoming/a.txt"))
	require.NoError(t, b.Rmd(ctx, "/incoming"))
}

func TestDelRefusesDirectory(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	require.NoError(t, b.Mkd(ctx, "/d"))
	requireKind(t, b.Del(ctx, "/d"), storage.KindPermanentUnavailable)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	_, err := b.Put(ctx, "/a", strings.NewReader("x"), 0)
	require.NoError(t, err)
	require.NoError(t, b.Rename(ctx, "/a", "/b"))

	_, err = b.Stat(ctx, "/b")
	require.NoError(t, err)
	_, err = b.Stat(ctx, "/a")
	require.Error(t, err)
}

func TestPutWithOffsetRestartsWrite(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	_, err := b.Put(ctx, "/f", strings.NewReader("aaaaaa"), 0)
	require.NoError(t, err)
	_, err = b.Put(ctx, "/f", strings.NewReader("bb"), 4)
	require.NoError(t, err)

	fi, err := b.Stat(ctx, "/f")
	require.NoError(t, err)
	assert.Equal(t, int64(6), fi.Size)

	r, err := b.Open(ctx, "/f", 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "aaaabb", string(data))
}
