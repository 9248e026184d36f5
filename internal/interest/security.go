package interest

import (
	"regexp"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// SecurityScanner inspects a filename and an optional content sample for the
// patterns spec §4.6 calls out: hardcoded secrets, private keys, suspicious
// commands, wallet files, and web-shell names. It never reads a file itself —
// the caller supplies whatever sample it already has; neither the walker nor
// the tool-server pipeline calls it. Grounded on
// original_source/src/security_vigilance.rs's SecurityVigilance, with its
// "vigilance" narrative, emoji, and recent-write tracker dropped per spec §1
// (Smart Tree's scanner is a filesystem analyzer, not a live security
// monitor).
type SecurityScanner struct {
	contentPatterns []contentPattern
	suspiciousNames map[string]string
}

type contentPattern struct {
	re       *regexp.Regexp
	reason   string
	risk     scanner.RiskLevel
}

// NewSecurityScanner builds a scanner with the spec's default pattern set.
func NewSecurityScanner() *SecurityScanner {
	return &SecurityScanner{
		contentPatterns: []contentPattern{
			{regexp.MustCompile(`eval\s*\(|exec\s*\(`), "dynamic code execution", scanner.RiskMedium},
			{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*=\s*["'][^"']+["']`), "hardcoded password", scanner.RiskCritical},
			{regexp.MustCompile(`(?i)api[_-]?key\s*=\s*["'][^"']+["']`), "hardcoded API key", scanner.RiskCritical},
			{regexp.MustCompile(`-----BEGIN (RSA |OPENSSH |EC |DSA )?PRIVATE KEY-----`), "embedded private key", scanner.RiskCritical},
			{regexp.MustCompile(`0x[0-9a-fA-F]{40,}`), "possible crypto wallet address", scanner.RiskLow},
			{regexp.MustCompile(`(?i)wget|curl.*http`), "network download command", scanner.RiskMedium},
			{regexp.MustCompile(`/etc/passwd|/etc/shadow`), "system credential file reference", scanner.RiskCritical},
		},
		suspiciousNames: map[string]string{
			".env.prod":    "production environment file",
			"id_rsa":       "private SSH key",
			"id_ed25519":   "private SSH key",
			".npmrc":       "npm configuration with possible auth tokens",
			"wallet.dat":   "cryptocurrency wallet file",
			"backdoor.js":  "suspicious filename",
			"shell.php":    "web shell filename",
			"c99.php":      "known web shell filename",
		},
	}
}

// nameRisk maps a suspicious filename to the risk level its reason implies.
func nameRisk(reason string) scanner.RiskLevel {
	switch reason {
	case "private SSH key", "cryptocurrency wallet file", "suspicious filename", "web shell filename", "known web shell filename":
		return scanner.RiskCritical
	case "production environment file":
		return scanner.RiskMedium
	default:
		return scanner.RiskLow
	}
}

// ScanName checks a bare filename against the suspicious-name table (spec
// §4.6). Safe to call with no content sample available.
func (s *SecurityScanner) ScanName(name string) []scanner.SecurityFinding {
	reason, ok := s.suspiciousNames[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return []scanner.SecurityFinding{{
		RiskLevel:   nameRisk(reason),
		Description: reason,
		LocationHint: name,
	}}
}

// ScanContent checks a content sample (any prefix of a file, typically the
// same head-of-file sniff the walker already takes) against the suspicious
// content patterns (spec §4.6). Binary-looking categories should be
// filtered out by the caller before sampling; ScanContent itself does no
// category checks.
func (s *SecurityScanner) ScanContent(content []byte) []scanner.SecurityFinding {
	if len(content) == 0 {
		return nil
	}
	text := string(content)
	var findings []scanner.SecurityFinding
	for _, p := range s.contentPatterns {
		if p.re.MatchString(text) {
			findings = append(findings, scanner.SecurityFinding{
				RiskLevel:   p.risk,
				Description: p.reason,
			})
		}
	}
	return findings
}

// Scan runs both ScanName and ScanContent and returns every finding ordered
// most-severe first (spec §4.6 "findings sorted by severity").
func (s *SecurityScanner) Scan(name string, content []byte) []scanner.SecurityFinding {
	findings := append(s.ScanName(name), s.ScanContent(content)...)
	sortBySeverity(findings)
	return findings
}

var severityRank = map[scanner.RiskLevel]int{
	scanner.RiskCritical: 3,
	scanner.RiskHigh:     2,
	scanner.RiskMedium:   1,
	scanner.RiskLow:      0,
}

func sortBySeverity(findings []scanner.SecurityFinding) {
	for i := 1; i < len(findings); i++ {
		for j := i; j > 0 && severityRank[findings[j].RiskLevel] > severityRank[findings[j-1].RiskLevel]; j-- {
			findings[j], findings[j-1] = findings[j-1], findings[j]
		}
	}
}
