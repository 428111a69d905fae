//go:build linux

package ranker

import (
	"os"
	"syscall"
	"time"
)

// creationTime approximates the creation instant with the inode change time.
// Linux does not expose a portable birth time through os.FileInfo.
func creationTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}
