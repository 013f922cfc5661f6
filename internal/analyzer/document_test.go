package analyzer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/complyscan/internal/rules"
)

const document = `import hashlib

def register(user):
    digest = md5(user.password)
    send(user.email)
`

func TestAnalyzeDocument(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled([]string{"GDPR"}, nil, nil), nil)

	result := d.AnalyzeDocument("file:///app/register.py", document, "python")
	assert.Equal(t, "file:///app/register.py", result.URI)
	assert.Equal(t, 1, result.Version)
	assert.Equal(t, d.Rules().Len(), result.PatternsChecked)
	assert.GreaterOrEqual(t, result.AnalysisTimeMs, 0.0)

	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, "SEC-WEAK_CRYPT", result.Diagnostics[0].Code)
	assert.Equal(t, 4, result.Diagnostics[0].LineStart)
	assert.Equal(t, "GDPR-PERSONAL_D", result.Diagnostics[1].Code)
	assert.Equal(t, 5, result.Diagnostics[1].LineStart)
	assert.Equal(t, "file:///app/register.py", result.Diagnostics[1].FilePath)
}

func TestAnalyzeDocumentVersions(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled(nil, nil, nil), nil)

	assert.Equal(t, 1, d.AnalyzeDocument("a", "", "go").Version)
	assert.Equal(t, 2, d.AnalyzeDocument("a", "", "go").Version)
	assert.Equal(t, 1, d.AnalyzeDocument("b", "", "go").Version)
	assert.Equal(t, 3, d.AnalyzeDocument("a", "", "go").Version)
}

func TestAnalyzeDocumentSeverityThreshold(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled([]string{"GDPR", "HIPAA"}, nil, nil), nil)
	content := "gtag('event')\nload(patient_id)\n"

	assert.Len(t, d.AnalyzeDocument("a", content, "javascript").Diagnostics, 2)

	require.NoError(t, d.SetSeverityThreshold(rules.SeverityCritical))
	assert.Equal(t, rules.SeverityCritical, d.SeverityThreshold())

	diagnostics := d.AnalyzeDocument("a", content, "javascript").Diagnostics
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "HIPAA-PHI_EXPOSU", diagnostics[0].Code)

	assert.Error(t, d.SetSeverityThreshold("urgent"))
	assert.Equal(t, rules.SeverityCritical, d.SeverityThreshold())
}

func TestAnalyzeDocumentCustomPatterns(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled(nil, nil, nil), nil)
	before := d.Rules()

	assert.Empty(t, d.AnalyzeDocument("a", "internal_id = 1", "python").Diagnostics)

	err := d.AddCustomPattern(rules.Rule{
		Name:     "internal_identifier",
		Pattern:  `internal_id`,
		Message:  "internal identifier used",
		Severity: rules.SeverityLow,
		Category: "custom",
	})
	require.NoError(t, err)
	assert.Equal(t, before.Len()+1, d.Rules().Len())
	_, ok := before.Lookup("internal_identifier")
	assert.False(t, ok, "previous snapshot is left untouched")

	diagnostics := d.AnalyzeDocument("a", "internal_id = 1", "python").Diagnostics
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "SEC-INTERNAL_I", diagnostics[0].Code)

	assert.Error(t, d.AddCustomPattern(rules.Rule{Name: "broken", Pattern: `(?<=x)y`}))
	assert.Equal(t, before.Len()+1, d.Rules().Len())

	assert.True(t, d.RemoveCustomPattern("internal_identifier"))
	assert.False(t, d.RemoveCustomPattern("internal_identifier"))
	assert.Empty(t, d.AnalyzeDocument("a", "internal_id = 1", "python").Diagnostics)
}

func TestAnalyzeDocumentNonText(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled([]string{"GDPR"}, nil, nil), nil)
	result := d.AnalyzeDocument("a", "email\x00\xff", "unknown")
	assert.NotNil(t, result.Diagnostics)
	assert.Empty(t, result.Diagnostics)
}

func TestAnalyzeDocumentConcurrentRuleChanges(t *testing.T) {
	d := NewDocumentAnalyzer(rules.CompileEnabled([]string{"GDPR"}, nil, nil), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = d.AddCustomPattern(rules.Rule{Name: "flag", Pattern: `flag`, Severity: rules.SeverityLow})
			d.RemoveCustomPattern("flag")
		}()
		go func() {
			defer wg.Done()
			result := d.AnalyzeDocument("doc", "send(email)", "python")
			assert.NotEmpty(t, result.Diagnostics)
		}()
	}
	wg.Wait()

	_, ok := d.Rules().Lookup("flag")
	assert.False(t, ok)
}
