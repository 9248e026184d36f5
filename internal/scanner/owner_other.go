//go:build !unix

package scanner

import "os"

// ownerGroupOf has no portable equivalent outside unix; spec §3 permits a
// default when owner/group are unavailable.
func ownerGroupOf(info os.FileInfo) (owner, group uint32) {
	return 0, 0
}
