package interest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smarttree/smarttree/internal/scanner"
)

func node(name string, category scanner.Category, modified time.Time) *scanner.Node {
	return &scanner.Node{
		Path:     []string{name},
		Kind:     scanner.KindRegular,
		Category: category,
		Modified: modified,
	}
}

func TestRecencyFactorDecaysWithAge(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	ctx := NewContext(now)

	fresh := node("a.go", scanner.CategoryGo, now.Add(-30*time.Minute))
	old := node("b.go", scanner.CategoryGo, now.Add(-200*time.Hour))

	freshScore := Score(fresh, ctx)
	oldScore := Score(old, ctx)

	assert.Greater(t, freshScore.Score, oldScore.Score)
}

func TestKeyProjectFileBoost(t *testing.T) {
	now := time.Now()
	ctx := NewContext(now)
	readme := node("README.md", scanner.CategoryMarkdown, time.Time{})

	score := Score(readme, ctx)
	assertHasFactor(t, score, "KeyProjectFile")
}

func TestGithubWorkflowsTreatedAsCiConfig(t *testing.T) {
	ctx := NewContext(time.Now())
	n := &scanner.Node{Path: []string{"R", ".github", "workflows", "ci.yml"}, Category: scanner.CategoryYAML}

	score := Score(n, ctx)
	assertHasFactor(t, score, "KeyProjectFile")
}

func TestHotDirectoryFactorMatchesAncestor(t *testing.T) {
	ctx := NewContext(time.Now())
	ctx.HotDirs = map[string]bool{"R/src": true}
	n := &scanner.Node{Path: []string{"R", "src", "main.go"}, Category: scanner.CategoryGo}

	score := Score(n, ctx)
	assertHasFactor(t, score, "HotDirectory")
}

func TestDependencyTreePenaltyIncreasesWithDepth(t *testing.T) {
	ctx := NewContext(time.Now())
	shallow := &scanner.Node{Path: []string{"R", "node_modules", "pkg", "index.js"}}
	deep := &scanner.Node{Path: []string{"R", "node_modules", "pkg", "lib", "a", "b", "index.js"}}

	shallowScore := Score(shallow, ctx)
	deepScore := Score(deep, ctx)

	assert.Less(t, deepScore.Score, shallowScore.Score)
}

func TestFilesystemKindPenalty(t *testing.T) {
	ctx := NewContext(time.Now())
	n := &scanner.Node{Path: []string{"proc", "1"}, FilesystemKind: scanner.FSProcfs}

	score := Score(n, ctx)
	assertHasFactor(t, score, "FilesystemKindPenalty")
	assert.Equal(t, scanner.LevelBoring, score.Level)
}

func TestCategoryBoostAppliesToSourceFiles(t *testing.T) {
	ctx := NewContext(time.Now())
	n := &scanner.Node{Path: []string{"R", "main.rs"}, Category: scanner.CategoryRust}

	score := Score(n, ctx)
	assertHasFactor(t, score, "CategoryBoost")
}

func TestChangedSinceScanOnlyAppliesWithPriorState(t *testing.T) {
	ctx := NewContext(time.Now())
	n := &scanner.Node{Path: []string{"R", "a.txt"}, ChangeStatus: scanner.ChangeModified}

	withoutPrior := Score(n, ctx)
	assertNoFactor(t, withoutPrior, "ChangedSinceLastScan")

	ctx.PriorSig = map[string]scanner.FileSignature{}
	withPrior := Score(n, ctx)
	assertHasFactor(t, withPrior, "ChangedSinceLastScan")
}

func TestScoreWithSecurityAddsFactorAndNeverLowersScore(t *testing.T) {
	ctx := NewContext(time.Now())
	n := &scanner.Node{Path: []string{"R", ".env"}}

	base := Score(n, ctx)
	withFindings := ScoreWithSecurity(n, ctx, []scanner.SecurityFinding{
		{RiskLevel: scanner.RiskHigh, Description: "hardcoded API key"},
	})

	assert.GreaterOrEqual(t, withFindings.Score, base.Score)
	assertHasFactor(t, withFindings, "SecurityPattern")
}

func TestLevelFromScoreIsMonotonic(t *testing.T) {
	levels := []scanner.InterestLevel{
		scanner.LevelFromScore(0.1),
		scanner.LevelFromScore(0.3),
		scanner.LevelFromScore(0.5),
		scanner.LevelFromScore(0.7),
		scanner.LevelFromScore(0.9),
	}
	assert.Equal(t, []scanner.InterestLevel{
		scanner.LevelBoring, scanner.LevelBackground, scanner.LevelNotable,
		scanner.LevelImportant, scanner.LevelCritical,
	}, levels)
}

func assertHasFactor(t *testing.T, score scanner.InterestScore, name string) {
	t.Helper()
	for _, f := range score.Factors {
		if f.Name == name {
			return
		}
	}
	t.Fatalf("expected factor %q, got %+v", name, score.Factors)
}

func assertNoFactor(t *testing.T, score scanner.InterestScore, name string) {
	t.Helper()
	for _, f := range score.Factors {
		if f.Name == name {
			t.Fatalf("did not expect factor %q, got %+v", name, score.Factors)
		}
	}
}
