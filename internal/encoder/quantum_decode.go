package encoder

import "encoding/binary"

// QuantumNode is one entry reconstructed by DecodeQuantum: enough of a node
// to verify the format's round-trip invariant (spec §8) without pulling in
// scanner.Node's full field set.
type QuantumNode struct {
	Path        []string
	Size        int64
	Permissions uint16
	IsDir       bool
	IsSymlink   bool
}

// DecodeQuantum parses a rendered Quantum buffer back into its node stream,
// inverting QuantumEncoder.Emit byte for byte: header flags, the variable-
// width size field, the XOR permissions delta against the running parent
// permissions, the token dictionary, and the same/deeper/back traversal
// markers that encode tree nesting without repeating parent paths.
func DecodeQuantum(buf []byte) []QuantumNode {
	_, body := splitQuantum(buf)

	reverse := make(map[byte]string, len(baseTokens))
	for name, tok := range baseTokens {
		reverse[tok] = name
	}

	var out []QuantumNode
	var stack []string
	parentPerms := uint16(defaultParentPerms)

	pos := 0
	for pos < len(body) {
		for pos < len(body) && body[pos] == traverseBack {
			pos++
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		if pos >= len(body) {
			break
		}

		header := body[pos]
		pos++

		var size int64
		if header&bitSize != 0 {
			var n int
			size, n = decodeSize(body[pos:])
			pos += n
		}

		perms := parentPerms
		if header&bitPerms != 0 {
			delta := uint16(body[pos])<<8 | uint16(body[pos+1])
			pos += 2
			perms = parentPerms ^ delta
		}

		isDir := header&bitDir != 0
		isSymlink := header&bitSymlink != 0
		if isDir {
			parentPerms = perms
		}

		nameStart := pos
		for pos < len(body) && body[pos] != 0x00 {
			pos++
		}
		name := decodeQuantumName(body[nameStart:pos], reverse)
		pos++ // skip the 0x00 terminator

		path := make([]string, len(stack)+1)
		copy(path, stack)
		path[len(stack)] = name

		out = append(out, QuantumNode{
			Path:        path,
			Size:        size,
			Permissions: perms,
			IsDir:       isDir,
			IsSymlink:   isSymlink,
		})

		switch {
		case pos < len(body) && body[pos] == traverseDeeper:
			pos++
			stack = append(stack, name)
		case pos < len(body) && body[pos] == traverseSame:
			pos++
		}
	}

	return out
}

// decodeSize inverts encodeSize, returning the value and the number of bytes
// consumed including the leading width marker.
func decodeSize(b []byte) (int64, int) {
	switch b[0] {
	case 0x00:
		return int64(b[1]), 2
	case 0x01:
		return int64(binary.LittleEndian.Uint16(b[1:3])), 3
	case 0x02:
		return int64(binary.LittleEndian.Uint32(b[1:5])), 5
	default:
		return int64(binary.LittleEndian.Uint64(b[1:9])), 9
	}
}

// decodeQuantumName inverts tokenizeName's priority order: a lone token byte
// is an exact-name match, a trailing token byte is an extension, a leading
// token byte is a long prefix, and anything else is the raw name.
func decodeQuantumName(b []byte, reverse map[byte]string) string {
	if len(b) == 1 && b[0] >= 0x80 {
		if s, ok := reverse[b[0]]; ok {
			return s
		}
	}
	if len(b) > 0 && b[len(b)-1] >= 0x80 {
		if s, ok := reverse[b[len(b)-1]]; ok {
			return string(b[:len(b)-1]) + s
		}
	}
	if len(b) > 0 && b[0] >= 0x80 {
		if s, ok := reverse[b[0]]; ok {
			return s + string(b[1:])
		}
	}
	return string(b)
}
