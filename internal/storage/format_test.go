package storage

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatListLine(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	recent := FileInfo{
		Name:    "report.txt",
		Size:    2048,
		Mode:    0o644,
		ModTime: time.Date(2026, time.February, 9, 15, 4, 0, 0, time.UTC),
	}
	assert.Equal(t,
		"-rw-r--r-- 1 ftp ftp         2048 Feb  9 15:04 report.txt",
		FormatListLine(recent, now),
	)

	old := FileInfo{
		Name:    "archive",
		Mode:    fs.ModeDir | 0o755,
		ModTime: time.Date(2020, time.June, 12, 0, 0, 0, 0, time.UTC),
		IsDir:   true,
		Owner:   "alice",
		Group:   "staff",
	}
	assert.Equal(t,
		"drwxr-xr-x 1 alice staff            0 Jun 12  2020 archive",
		FormatListLine(old, now),
	)
}

func TestErrorKindStrings(t *testing.T) {
	assert.Equal(t, "permission denied", KindPermissionDenied.String())
	assert.Equal(t, "exceeded storage allocation", KindExceededAllocation.String())
}

func TestFeatureHas(t *testing.T) {
	var f Feature
	assert.False(t, f.Has(FeatureRestart))
	f |= FeatureRestart
	assert.True(t, f.Has(FeatureRestart))
}
