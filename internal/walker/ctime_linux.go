//go:build linux

package walker

import (
	"os"
	"syscall"
	"time"
)

// fileCreated returns the inode change time, the closest thing to a
// creation time that stat(2) exposes on Linux. Falls back to mtime for
// filesystems that do not carry a Stat_t (afero in-memory files).
func fileCreated(info os.FileInfo) time.Time {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}

	return time.Unix(int64(sys.Ctim.Sec), int64(sys.Ctim.Nsec)) //nolint:unconvert // field widths differ per arch
}
