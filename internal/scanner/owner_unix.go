//go:build unix

package scanner

import (
	"os"
	"syscall"
)

func ownerGroupOf(info os.FileInfo) (owner, group uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return st.Uid, st.Gid
}
