//go:build darwin

package ranker

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the file's birth time as reported by the kernel.
func creationTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
}
