package storage

import (
	"fmt"
	"time"
)

// FormatListLine renders a FileInfo as a unix ls(1)-style line, the de facto
// wire format clients expect from LIST.
//
// Entries modified within the last six months show "Jan _2 15:04", older
// entries show "Jan _2  2006".
func FormatListLine(fi FileInfo, now time.Time) string {
	owner, group := fi.Owner, fi.Group
	if owner == "" {
		owner = "ftp"
	}
	if group == "" {
		group = "ftp"
	}

	var stamp string
	if now.Sub(fi.ModTime) < 180*24*time.Hour {
		stamp = fi.ModTime.Format("Jan _2 15:04")
	} else {
		stamp = fi.ModTime.Format("Jan _2  2006")
	}

	return fmt.Sprintf("%s 1 %s %s %12d %s %s", fi.Mode.String(), owner, group, fi.Size, stamp, fi.Name)
}
