// Package interest implements the Interest Engine: per-node weighted factor
// scoring (spec §4.5) and classification into a five-level scale. There is
// no separate metadata-free quick-check path: every node goes through
// Score. Factor order and weight
// formulas are grounded on original_source/src/interest_calculator.rs's
// InterestCalculator.calculate, generalised from a single-language Rust
// source of truth into Go's interface-light style.
package interest

import (
	"strings"
	"time"

	"github.com/smarttree/smarttree/internal/scanner"
)

// Weights holds the tunable coefficients from spec §4.5's factor table.
// Defaults match the spec and original_source's InterestWeights::default.
type Weights struct {
	RecentModification   float64
	KeyFile               float64
	ChangedSinceScan      float64
	HotDirectory          float64
	DependencyDepthPenalty float64
}

// DefaultWeights are the spec's documented defaults.
var DefaultWeights = Weights{
	RecentModification:    0.3,
	KeyFile:                0.5,
	ChangedSinceScan:       0.4,
	HotDirectory:           0.3,
	DependencyDepthPenalty: -0.1,
}

// Context carries the inputs Score needs beyond the node itself (spec
// §4.5): the cached clock, the hot-directory set, optional prior state and
// the weights. Security findings are not carried here; ScoreWithSecurity
// takes them as an argument.
type Context struct {
	Now         time.Time
	HotDirs     map[string]bool
	PriorSig    map[string]scanner.FileSignature // keyed by joined path
	Weights     Weights
}

// NewContext builds a Context with DefaultWeights and the given clock.
func NewContext(now time.Time) *Context {
	return &Context{Now: now, Weights: DefaultWeights}
}

// Score computes node's InterestScore by folding every applicable factor in
// the documented order (spec §4.5): recency, key-file, changed-since-scan,
// hot-directory, dependency-tree penalty, filesystem-kind penalty,
// category boost. Security findings are folded in separately by
// ScoreWithSecurity since they require file content the caller must supply.
func Score(node *scanner.Node, ctx *Context) scanner.InterestScore {
	var factors []scanner.InterestFactor

	if f, ok := recencyFactor(node, ctx); ok {
		factors = append(factors, f)
	}
	if f, ok := keyFileFactor(node, ctx); ok {
		factors = append(factors, f)
	}
	if f, ok := changedFactor(node, ctx); ok {
		factors = append(factors, f)
	}
	if f, ok := hotDirFactor(node, ctx); ok {
		factors = append(factors, f)
	}
	if f, ok := dependencyFactor(node, ctx); ok {
		factors = append(factors, f)
	}
	if f, ok := filesystemPenaltyFactor(node); ok {
		factors = append(factors, f)
	}
	if f, ok := categoryBoostFactor(node); ok {
		factors = append(factors, f)
	}

	return fromFactors(factors, ctx.Now)
}

// ScoreWithSecurity is Score plus a SecurityPattern factor per finding (spec
// §4.5's SecurityPattern row; §4.6's scanner supplies the findings).
func ScoreWithSecurity(node *scanner.Node, ctx *Context, findings []scanner.SecurityFinding) scanner.InterestScore {
	score := Score(node, ctx)
	if len(findings) == 0 {
		return score
	}
	for _, finding := range findings {
		score.Factors = append(score.Factors, scanner.InterestFactor{
			Name:   "SecurityPattern",
			Weight: securityWeight(finding.RiskLevel),
			Detail: finding.Description,
		})
	}
	return recompute(score)
}

func fromFactors(factors []scanner.InterestFactor, now time.Time) scanner.InterestScore {
	score := scanner.InterestScore{Factors: factors, CalculatedAt: now}
	return recompute(score)
}

// recompute clamps the factor sum into [0,1] and re-derives Level — the
// single place both Score and ScoreWithSecurity funnel through, so raising
// any one factor's weight can only raise or hold the final score (spec §8
// invariant 5).
func recompute(score scanner.InterestScore) scanner.InterestScore {
	sum := 0.0
	for _, f := range score.Factors {
		sum += f.Weight
	}
	score.Score = clamp01(sum)
	score.Level = scanner.LevelFromScore(score.Score)
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func securityWeight(risk scanner.RiskLevel) float64 {
	switch risk {
	case scanner.RiskCritical:
		return 1.0
	case scanner.RiskHigh:
		return 0.8
	case scanner.RiskMedium:
		return 0.5
	default:
		return 0.2
	}
}

// recencyFactor implements the RecentlyModified row's piecewise decay (spec
// §4.5), grounded on interest_calculator.rs's check_recency.
func recencyFactor(node *scanner.Node, ctx *Context) (scanner.InterestFactor, bool) {
	if node.Modified.IsZero() || node.Modified.After(ctx.Now) {
		return scanner.InterestFactor{}, false
	}
	hours := ctx.Now.Sub(node.Modified).Hours()

	var weight float64
	switch {
	case hours < 1:
		weight = ctx.Weights.RecentModification * 1.5
	case hours < 24:
		weight = ctx.Weights.RecentModification * (1 - hours/48)
	case hours < 168:
		weight = ctx.Weights.RecentModification * 0.3 * (1 - hours/336)
	default:
		return scanner.InterestFactor{}, false
	}

	if weight <= 0.05 {
		return scanner.InterestFactor{}, false
	}
	return scanner.InterestFactor{Name: "RecentlyModified", Weight: weight}, true
}

// keyProjectFiles is the exact-filename table from spec §4.5 / §4.5's
// "small table (README, build configs, entry points, LICENSE, CI, container,
// AI config)", grounded on interest_calculator.rs's check_key_file.
var keyProjectFiles = map[string]string{
	"readme.md": "Documentation", "readme": "Documentation", "readme.txt": "Documentation",
	"changelog.md": "Documentation", "changelog": "Documentation", "history.md": "Documentation",

	"cargo.toml": "BuildConfig", "package.json": "BuildConfig", "pyproject.toml": "BuildConfig",
	"go.mod": "BuildConfig", "gemfile": "BuildConfig", "build.gradle": "BuildConfig",
	"pom.xml": "BuildConfig", "makefile": "BuildConfig", "cmakelists.txt": "BuildConfig",

	".env": "Configuration", ".env.local": "Configuration", ".env.example": "Configuration",
	"config.toml": "Configuration", "config.yaml": "Configuration", "config.json": "Configuration",
	"settings.toml": "Configuration", "settings.yaml": "Configuration",

	"main.rs": "EntryPoint", "lib.rs": "EntryPoint", "mod.rs": "EntryPoint",
	"index.js": "EntryPoint", "index.ts": "EntryPoint", "main.py": "EntryPoint",
	"__init__.py": "EntryPoint", "app.py": "EntryPoint", "main.go": "EntryPoint", "main.java": "EntryPoint",

	"license": "License", "license.md": "License", "license.txt": "License", "copying": "License",

	".gitlab-ci.yml": "CiConfig", "jenkinsfile": "CiConfig", ".travis.yml": "CiConfig",
	"azure-pipelines.yml": "CiConfig",

	"dockerfile": "Container", "docker-compose.yml": "Container", "docker-compose.yaml": "Container",
	"containerfile": "Container",

	"claude.md": "AiConfig", ".cursorrules": "AiConfig", ".aider": "AiConfig", "copilot.md": "AiConfig",
}

func keyFileFactor(node *scanner.Node, ctx *Context) (scanner.InterestFactor, bool) {
	if node.IsDir() {
		return scanner.InterestFactor{}, false
	}
	lower := strings.ToLower(node.Name())
	keyType, ok := keyProjectFiles[lower]
	if !ok && strings.Contains(node.JoinedPath(), ".github/workflows") {
		keyType, ok = "CiConfig", true
	}
	if !ok {
		return scanner.InterestFactor{}, false
	}
	return scanner.InterestFactor{Name: "KeyProjectFile", Weight: ctx.Weights.KeyFile, Detail: keyType}, true
}

func changedFactor(node *scanner.Node, ctx *Context) (scanner.InterestFactor, bool) {
	if ctx.PriorSig == nil {
		return scanner.InterestFactor{}, false
	}
	if node.ChangeStatus == "" {
		return scanner.InterestFactor{}, false
	}
	return scanner.InterestFactor{
		Name:   "ChangedSinceLastScan",
		Weight: ctx.Weights.ChangedSinceScan,
		Detail: string(node.ChangeStatus),
	}, true
}

func hotDirFactor(node *scanner.Node, ctx *Context) (scanner.InterestFactor, bool) {
	if len(ctx.HotDirs) == 0 {
		return scanner.InterestFactor{}, false
	}
	for i := len(node.Path); i > 0; i-- {
		if ctx.HotDirs[strings.Join(node.Path[:i], "/")] {
			return scanner.InterestFactor{Name: "HotDirectory", Weight: ctx.Weights.HotDirectory}, true
		}
	}
	return scanner.InterestFactor{}, false
}

// dependencyMarkers are the known dependency-tree indicators (spec §4.5),
// grounded on interest_calculator.rs's dep_indicators table.
var dependencyMarkers = []string{
	"node_modules", "target/debug", "target/release", ".venv", "venv",
	"__pycache__", "vendor", ".m2", "build/classes",
}

func dependencyFactor(node *scanner.Node, ctx *Context) (scanner.InterestFactor, bool) {
	joined := node.JoinedPath()
	for _, marker := range dependencyMarkers {
		idx := strings.Index(joined, marker)
		if idx < 0 {
			continue
		}
		rest := joined[idx+len(marker):]
		depth := strings.Count(rest, "/")
		weight := ctx.Weights.DependencyDepthPenalty * float64(depth+1)
		return scanner.InterestFactor{Name: "InDependencyTree", Weight: weight, Detail: marker}, true
	}
	return scanner.InterestFactor{}, false
}

func filesystemPenaltyFactor(node *scanner.Node) (scanner.InterestFactor, bool) {
	switch node.FilesystemKind {
	case scanner.FSProcfs, scanner.FSSysfs, scanner.FSDevfs:
		return scanner.InterestFactor{Name: "FilesystemKindPenalty", Weight: -0.5}, true
	case scanner.FSTmpfs:
		return scanner.InterestFactor{Name: "FilesystemKindPenalty", Weight: -0.2}, true
	default:
		return scanner.InterestFactor{}, false
	}
}

// categoryBoosts is the ±weight table from spec §4.5 / original_source's
// check_category_boost.
var categoryBoosts = map[scanner.Category]float64{
	scanner.CategoryRust: 0.1, scanner.CategoryPython: 0.1, scanner.CategoryJavaScript: 0.1,
	scanner.CategoryTypeScript: 0.1, scanner.CategoryGo: 0.1, scanner.CategoryJava: 0.1,
	scanner.CategoryCpp: 0.1, scanner.CategoryC: 0.1,

	scanner.CategoryTOML: 0.15, scanner.CategoryYAML: 0.15, scanner.CategoryJSON: 0.15,
	scanner.CategoryMakefile: 0.15, scanner.CategoryDockerfile: 0.15,

	scanner.CategoryMarkdown: 0.1,

	scanner.CategoryArchive: -0.1, scanner.CategoryBinary: -0.1,
}

func categoryBoostFactor(node *scanner.Node) (scanner.InterestFactor, bool) {
	if node.IsDir() {
		return scanner.InterestFactor{}, false
	}
	boost, ok := categoryBoosts[node.Category]
	if !ok {
		return scanner.InterestFactor{}, false
	}
	return scanner.InterestFactor{Name: "CategoryBoost", Weight: boost, Detail: string(node.Category)}, true
}
