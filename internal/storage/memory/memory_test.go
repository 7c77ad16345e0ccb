package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/developerfred/libunftp/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind storage.ErrorKind) {
	t.Helper()
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, kind, serr.Kind)
}

func TestPutOpenRoundtrip(t *testing.T) {
	ctx := context.Background()
	b := New()

	n, err := b.Put(ctx, "/hello.txt", strings.NewReader("hello world"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	r, err := b.Open(ctx, "/hello.txt", 6)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

func TestPutWithOffsetAppends(t *testing.T) {
	ctx := context.Background()
	b := New()

	_, err := b.Put(ctx, "/f", strings.NewReader("aaaa"), 0)
	require.NoError(t, err)
	_, err = b.Put(ctx, "/f", strings.NewReader("bb"), 4)
	require.NoError(t, err)

	fi, err := b.Stat(ctx, "/f")
	require.NoError(t, err)
	assert.Equal(t, int64(6), fi.Size)
}

func TestPutIntoMissingDirectory(t *testing.T) {
	_, err := New().Put(context.Background(), "/no/such/dir/f", strings.NewReader("x"), 0)
	requireKind(t, err, storage.KindPermanentUnavailable)
}

func TestMkdListRmd(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.NoError(t, b.Mkd(ctx, "/incoming"))
	_, err := b.Put(ctx, "/incoming/a.txt", strings.NewReader("a"), 0)
	require.NoError(t, err)

	entries, err := b.List(ctx, "/incoming")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.False(t, entries[0].IsDir)

	// Non-empty directory refuses removal.
	requireKind(t, b.Rmd(ctx, "/incoming"), storage.KindTransientUnavailable)

	require.NoError(t, b.Del(ctx, "/incoming/a.txt"))
	require.NoError(t, b.Rmd(ctx, "/incoming"))

	_, err = b.Stat(ctx, "/incoming")
	requireKind(t, err, storage.KindPermanentUnavailable)
}

func TestMkdExistingFails(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.NoError(t, b.Mkd(ctx, "/d"))
	requireKind(t, b.Mkd(ctx, "/d"), storage.KindBadFileName)
}

func TestRenameDirectoryCarriesChildren(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.NoError(t, b.Mkd(ctx, "/old"))
	_, err := b.Put(ctx, "/old/f", strings.NewReader("x"), 0)
	require.NoError(t, err)

	require.NoError(t, b.Rename(ctx, "/old", "/new"))

	_, err = b.Stat(ctx, "/new/f")
	require.NoError(t, err)
	_, err = b.Stat(ctx, "/old")
	requireKind(t, err, storage.KindPermanentUnavailable)
}

func TestRenameIntoOwnSubtreeRefused(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.NoError(t, b.Mkd(ctx, "/a"))
	_, err := b.Put(ctx, "/a/f.txt", strings.NewReader("x"), 0)
	require.NoError(t, err)

	requireKind(t, b.Rename(ctx, "/a", "/a"), storage.KindBadFileName)
	requireKind(t, b.Rename(ctx, "/a", "/a/b"), storage.KindBadFileName)
	requireKind(t, b.Rename(ctx, "/a", "/a/b/c"), storage.KindBadFileName)

	// The refused moves must leave the tree untouched.
	_, err = b.Stat(ctx, "/a")
	require.NoError(t, err)
	_, err = b.Stat(ctx, "/a/f.txt")
	require.NoError(t, err)
}

func TestRmdRootRefused(t *testing.T) {
	requireKind(t, New().Rmd(context.Background(), "/"), storage.KindPermissionDenied)
}

func TestOpenDirectoryFails(t *testing.T) {
	ctx := context.Background()
	b := New()
	require.NoError(t, b.Mkd(ctx, "/d"))

	_, err := b.Open(ctx, "/d", 0)
	var serr *storage.Error
	require.True(t, errors.As(err, &serr))
}

func TestFeatures(t *testing.T) {
	assert.True(t, New().Features().Has(storage.FeatureRestart))
}
