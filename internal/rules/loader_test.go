package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/complyscan/pkg/shared/config"
)

func TestLoadRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	content := `rules:
  - name: employee_id
    pattern: 'employee_(?:id|number)'
    severity: HIGH
    regulation: GDPR
    article: Art. 9
  - name: internal_host
    pattern: 'corp\.internal'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadRuleFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, Rule{
		Name:       "employee_id",
		Pattern:    "employee_(?:id|number)",
		Message:    "Custom rule employee_id matched",
		Severity:   SeverityHigh,
		Regulation: "GDPR",
		Article:    "Art. 9",
		Category:   "custom",
	}, rules[0])
	assert.Equal(t, SeverityMedium, rules[1].Severity)
	assert.True(t, rules[1].IsBaseline())
}

func TestDecodeRulesErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     []map[string]interface{}
		wantErr string
	}{
		{
			name:    "missing name",
			raw:     []map[string]interface{}{{"pattern": "x"}},
			wantErr: "rule #1: name is required",
		},
		{
			name:    "missing pattern",
			raw:     []map[string]interface{}{{"name": "x"}},
			wantErr: `rule "x": pattern is required`,
		},
		{
			name:    "unknown severity",
			raw:     []map[string]interface{}{{"name": "x", "pattern": "x", "severity": "severe"}},
			wantErr: "unknown severity",
		},
		{
			name:    "unknown field",
			raw:     []map[string]interface{}{{"name": "x", "pattern": "x", "weight": 3}},
			wantErr: "weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRules(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCustomRulesInlineOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: shared\n    pattern: from_file\n"), 0644))

	cfg := &config.Config{Scanner: config.Scanner{
		RulesFile: path,
		CustomRules: []map[string]interface{}{
			{"name": "shared", "pattern": "inline", "severity": "low"},
			{"name": "extra", "pattern": "extra"},
		},
	}}

	rules, err := LoadCustomRules(cfg)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "inline", rules[0].Pattern)
	assert.Equal(t, "extra", rules[1].Name)

	none, err := LoadCustomRules(nil)
	assert.NoError(t, err)
	assert.Empty(t, none)
}
