package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/smarttree/smarttree/internal/scanner"
)

// QuantumSafeEncoder wraps Quantum's binary region in base64 so the result
// is transmittable as text/JSON (spec §4.8.2).
type QuantumSafeEncoder struct {
	inner *QuantumEncoder
}

func NewQuantumSafe() *QuantumSafeEncoder { return &QuantumSafeEncoder{inner: NewQuantum()} }

func (QuantumSafeEncoder) Name() string { return "quantum-safe" }

func (e QuantumSafeEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	var buf bytes.Buffer
	if err := e.inner.Emit(&buf, nodes, stats, root); err != nil {
		return err
	}

	header, body := splitQuantum(buf.Bytes())
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	fmt.Fprintln(w, "---BEGIN_DATA_BASE64---")
	encoded := base64.StdEncoding.EncodeToString(body)
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		fmt.Fprintln(w, encoded[i:end])
	}
	fmt.Fprintln(w, "---END_DATA_BASE64---")

	estimate := stats.TotalFiles*200 + stats.TotalDirs*100
	ratio := 100.0
	if estimate > 0 {
		ratio = float64(len(body)) / float64(estimate) * 100.0
	}

	fmt.Fprintln(w, "---METADATA---")
	fmt.Fprintln(w, "ENCODING: base64")
	fmt.Fprintf(w, "BINARY_SIZE: %d\n", len(body))
	fmt.Fprintf(w, "ENCODED_SIZE: %d\n", len(encoded))
	fmt.Fprintf(w, "COMPRESSION_RATIO: %.1f%%\n", ratio)
	return nil
}
