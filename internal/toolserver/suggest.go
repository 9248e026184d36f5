package toolserver

import "github.com/hbollon/go-edlib"

// suggestTool returns the closest registered tool name to name, by
// Levenshtein distance, for the "did you mean" hint on an unknown-method
// error (spec §7's InvalidInput). Grounded on standardbeagle-lci's
// semantic.FuzzyMatcher use of edlib.StringsSimilarity.
func suggestTool(name string, known []string) string {
	best := ""
	var bestScore float32
	for _, k := range known {
		score, err := edlib.StringsSimilarity(name, k, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = k
		}
	}
	if bestScore < 0.5 {
		return ""
	}
	return best
}
