//go:build !linux && !darwin

package ranker

import (
	"os"
	"time"
)

// creationTime is unavailable on this platform; callers fall back to the
// modification time.
func creationTime(os.FileInfo) time.Time {
	return time.Time{}
}
