package scanner

import "strings"

// specialSizePrefixes are path prefixes under which reported size is
// misleading (spec §4.3 "detect special files").
var specialSizePrefixes = []string{"/proc", "/sys", "/dev"}

// isSpecialSizePath reports whether absPath lives under a virtual filesystem
// whose size field should be clamped to 0.
func isSpecialSizePath(absPath string) bool {
	for _, prefix := range specialSizePrefixes {
		if absPath == prefix || strings.HasPrefix(absPath, prefix+"/") {
			return true
		}
	}
	return false
}

// isSpecialSizeKind reports whether a Kind's size is inherently misleading
// regardless of path (char/block/pipe/socket, per spec §4.3).
func isSpecialSizeKind(k Kind) bool {
	switch k {
	case KindCharDev, KindBlockDev, KindPipe, KindSocket:
		return true
	default:
		return false
	}
}

// clampSize returns 0 when the node's size should be treated as unreliable.
func clampSize(absPath string, k Kind, size int64) int64 {
	if isSpecialSizePath(absPath) || isSpecialSizeKind(k) {
		return 0
	}
	return size
}
