// Package encoder implements the Encoder Family: thirteen output formats sharing
// a common dispatch interface, generalising the teacher's dynamic-dispatch
// convention (discovery.Ignorer, tokenizer.Tokenizer — one interface, many
// concrete implementations looked up by name) onto spec §4.8's format list.
// Byte-exact framing for the binary/structured formats is grounded on
// original_source/src/formatters/*.rs, since spec.md itself defers exact
// layout to "the source".
package encoder

import (
	"io"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/scanner"
)

// Encoder renders a complete node list plus its stats in one shot.
type Encoder interface {
	// Name is the format's registry key (spec §6.2 --format values).
	Name() string
	Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error
}

// StreamingEncoder is the optional trio for scanStream (spec §4.8's
// contract): start/emitNode/end, used so a caller can write a format
// incrementally without materialising the whole node list first.
type StreamingEncoder interface {
	Encoder
	Start(w io.Writer, root string) error
	EmitNode(w io.Writer, node *scanner.Node, root string) error
	End(w io.Writer, stats scanner.TreeStats, root string) error
}

// Registry resolves a format name to its Encoder, the way teacher's
// tokenizer/ignorer constructors are looked up by config-driven name rather
// than compiled-in switch statements spread across callers.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry builds a Registry pre-populated with every format spec §4.8
// names.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, e := range []Encoder{
		NewQuantum(),
		NewQuantumSafe(),
		NewClaude(),
		NewHexTree(),
		NewSummaryAI(),
		NewSemanticQuantum(),
		NewDigest(),
		NewAI(),
		NewAIJSON(),
		NewRelations(),
		NewContext(),
		NewSSE(),
		NewMarkqant(),
	} {
		r.encoders[e.Name()] = e
	}
	return r
}

// Get resolves name to its Encoder, or an InvalidInput error listing the
// registered names (spec §7's error taxonomy).
func (r *Registry) Get(name string) (Encoder, error) {
	e, ok := r.encoders[name]
	if !ok {
		return nil, apperr.New(apperr.InvalidInput, "unknown encoder format %q", name)
	}
	return e, nil
}

// Names returns every registered format name, sorted for stable listings.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
