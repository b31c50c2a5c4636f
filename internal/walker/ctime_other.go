//go:build !linux && !darwin

package walker

import (
	"os"
	"time"
)

// fileCreated falls back to the modification time on platforms without
// a supported creation time.
func fileCreated(info os.FileInfo) time.Time {
	return info.ModTime()
}
