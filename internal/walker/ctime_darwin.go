//go:build darwin

package walker

import (
	"os"
	"syscall"
	"time"
)

// fileCreated returns the file birth time. On macOS, Stat_t carries
// Birthtimespec.
func fileCreated(info os.FileInfo) time.Time {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}

	return time.Unix(sys.Birthtimespec.Sec, sys.Birthtimespec.Nsec)
}
