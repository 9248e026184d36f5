package encoder

import (
	"fmt"
	"strings"
)

// writerBuffer is an io.Writer that also exposes its content split into
// lines, used by encoders that build on top of another encoder's text
// output (e.g. AI-JSON re-emitting Hex-Tree's body as a JSON array).
type writerBuffer struct {
	strings.Builder
}

func (b *writerBuffer) lines() []string {
	text := strings.TrimRight(b.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func baseName(joinedPath string) string {
	idx := strings.LastIndexByte(joinedPath, '/')
	if idx < 0 {
		return joinedPath
	}
	return joinedPath[idx+1:]
}

func megabytes(size int64) string {
	return fmt.Sprintf("%.1f", float64(size)/(1024.0*1024.0))
}
