package encoder

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/smarttree/smarttree/internal/scanner"
)

// MarkqantEncoder implements the .mq quantum-compressed markdown format (spec
// §4.8.10): a static-token pass over common markdown punctuation, a
// frequency-greedy n-gram tokenizer (2..8 words, >=2 occurrences), a token
// dictionary section, and an optional outer zlib+base64 stage. Grounded on
// original_source/src/formatters/markqant.rs's MarkqantFormatter — its
// BinaryHeap-based phrase ranking is replaced with a sort, since Go's
// container/heap adds ceremony a plain sort.Slice avoids for a one-shot pass.
type MarkqantEncoder struct {
	Zlib bool
}

func NewMarkqant() *MarkqantEncoder { return &MarkqantEncoder{} }

func (MarkqantEncoder) Name() string { return "markqant" }

var markqantStaticTokens = []struct{ token, pattern string }{
	{"T00", "# "}, {"T01", "## "}, {"T02", "### "}, {"T03", "#### "},
	{"T04", "```"}, {"T05", "\n\n"}, {"T06", "- "}, {"T07", "* "},
	{"T08", "**"}, {"T09", "__"}, {"T0A", "> "}, {"T0B", "| "},
	{"T0C", "---"}, {"T0D", "***"}, {"T0E", "["}, {"T0F", "]("},
	{"T10", "```bash"}, {"T11", "```go"}, {"T12", "```javascript"}, {"T13", "```python"},
	{"T14", "\n```\n"}, {"T15", "    "},
}

type phraseFreq struct {
	phrase  string
	count   int
	savings int
}

// tokenizeMarkqant applies the static token table first, then greedily
// assigns 2..8-word phrases that occur at least twice and whose substitution
// saves bytes, skipping phrases that overlap an already-assigned one.
func tokenizeMarkqant(content string) (map[string]string, string) {
	tokens := map[string]string{}
	tokenized := content

	for _, st := range markqantStaticTokens {
		count := strings.Count(tokenized, st.pattern)
		if count == 0 {
			continue
		}
		if count*len(st.pattern) > count*len(st.token)+len(st.pattern)+5 {
			tokens[st.token] = st.pattern
			tokenized = strings.ReplaceAll(tokenized, st.pattern, st.token)
		}
	}

	words := strings.Fields(content)
	var candidates []phraseFreq
	seen := map[string]bool{}
	for windowSize := 2; windowSize <= 8 && windowSize < len(words); windowSize++ {
		for i := 0; i+windowSize <= len(words); i++ {
			phrase := strings.Join(words[i:i+windowSize], " ")
			if len(phrase) < 8 || strings.Contains(phrase, "T") || seen[phrase] {
				continue
			}
			seen[phrase] = true
			count := strings.Count(content, phrase)
			if count < 2 {
				continue
			}
			savings := phraseLenSavings(len(phrase), count)
			if savings > 0 {
				candidates = append(candidates, phraseFreq{phrase: phrase, count: count, savings: savings})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].savings > candidates[j].savings })

	tokenCounter := 0x16
	var assigned []string
	for _, c := range candidates {
		if tokenCounter > 0xFF {
			break
		}
		overlaps := false
		for _, a := range assigned {
			if strings.Contains(c.phrase, a) || strings.Contains(a, c.phrase) {
				overlaps = true
				break
			}
		}
		if overlaps || !strings.Contains(tokenized, c.phrase) {
			continue
		}
		token := fmt.Sprintf("T%02X", tokenCounter)
		tokens[token] = c.phrase
		tokenized = strings.ReplaceAll(tokenized, c.phrase, token)
		assigned = append(assigned, c.phrase)
		tokenCounter++
	}

	return tokens, tokenized
}

func phraseLenSavings(phraseLen, count int) int {
	saved := phraseLen*count - (3*count + phraseLen + 5)
	if saved < 0 {
		return 0
	}
	return saved
}

func compressMarkdown(markdown string, useZlib bool, now time.Time) (string, error) {
	tokens, tokenized := tokenizeMarkqant(markdown)

	finalContent := tokenized
	if useZlib {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write([]byte(tokenized)); err != nil {
			return "", err
		}
		if err := zw.Close(); err != nil {
			return "", err
		}
		finalContent = base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	dictSize := 0
	for k, v := range tokens {
		dictSize += len(k) + len(v) + 3
	}
	compressedSize := len(finalContent) + dictSize + 4

	var out strings.Builder
	if useZlib {
		fmt.Fprintf(&out, "MARKQANT_V1 %s %d %d -zlib\n", now.Format(time.RFC3339), len(markdown), compressedSize)
	} else {
		fmt.Fprintf(&out, "MARKQANT_V1 %s %d %d\n", now.Format(time.RFC3339), len(markdown), compressedSize)
	}

	var keys []string
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		escaped := strings.ReplaceAll(tokens[k], "\n", "\\n")
		fmt.Fprintf(&out, "%s=%s\n", k, escaped)
	}
	out.WriteString("---\n")
	out.WriteString(finalContent)

	return out.String(), nil
}

func (e MarkqantEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s Structure\n\n", baseName(root))
	md.WriteString("## File Tree\n\n")
	md.WriteString("```\n")
	for _, n := range nodes {
		indent := strings.Repeat("  ", n.Depth)
		suffix := ""
		if n.IsDir() {
			suffix = "/"
		}
		fmt.Fprintf(&md, "%s%s%s\n", indent, n.Name(), suffix)
	}
	md.WriteString("```\n\n")

	md.WriteString("## Statistics\n\n")
	fmt.Fprintf(&md, "- Total files: %d\n", stats.TotalFiles)
	fmt.Fprintf(&md, "- Total directories: %d\n", stats.TotalDirs)
	fmt.Fprintf(&md, "- Total size: %s MB\n", megabytes(stats.TotalSize))

	if len(stats.FileTypeHistogram) > 0 {
		md.WriteString("\n### File Types\n\n")
		type kv struct {
			ext   string
			count int64
		}
		var sorted []kv
		for ext, count := range stats.FileTypeHistogram {
			sorted = append(sorted, kv{ext, count})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })
		if len(sorted) > 10 {
			sorted = sorted[:10]
		}
		for _, e := range sorted {
			fmt.Fprintf(&md, "- .%s: %d files\n", e.ext, e.count)
		}
	}

	compressed, err := compressMarkdown(md.String(), e.Zlib, time.Now())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, compressed)
	return err
}
