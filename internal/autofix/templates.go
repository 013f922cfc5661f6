package autofix

import "strings"

// Template is a deterministic remediation for one violation code in one language.
// Fix and Tests are text/template sources; see fillData for the available fields.
type Template struct {
	Key         string
	Language    string
	Description string
	Fix         string
	Tests       []string
}

var pythonTemplates = []Template{
	{
		Key:         "SEC-HARDCODED_",
		Language:    "python",
		Description: "Load {{.VarName}} from the {{.EnvVarName}} environment variable instead of hardcoding it",
		Fix: `import os

{{.VarName}} = os.environ["{{.EnvVarName}}"]`,
		Tests: []string{
			"{{.VarName}} is read from {{.EnvVarName}}",
			"a missing {{.EnvVarName}} raises KeyError at startup",
		},
	},
	{
		Key:         "SEC-SQL_INJECT",
		Language:    "python",
		Description: "Pass values as query parameters instead of formatting them into SQL",
		Fix: `# values are bound by the driver, never formatted into {{.Query}}
cursor.execute({{.Query}}, params)`,
		Tests: []string{
			"a value containing a quote is stored verbatim",
		},
	},
	{
		Key:         "SEC-WEAK_CRYPT",
		Language:    "python",
		Description: "Replace the weak hash with SHA-256",
		Fix: `import hashlib

{{.VarName}} = hashlib.sha256(data).hexdigest()`,
	},
	{
		Key:         "GDPR-PII_LOGGIN",
		Language:    "python",
		Description: "Remove {{.DataType}} from log output",
		Fix:         `logger.info("{{.DataType}} event processed")`,
		Tests: []string{
			"log records do not contain {{.DataType}}",
		},
	},
	{
		Key:         "GDPR-PERSONAL_D",
		Language:    "python",
		Description: "Document the lawful basis for processing {{.DataType}}",
		Fix: `# lawful basis: consent, purpose documented in the record of processing
{{.OriginalCode}}`,
	},
	{
		Key:         "PCI-DSS-CARD_DATA_",
		Language:    "python",
		Description: "Tokenize {{.VarName}} before it is stored",
		Fix: `from payments.vault import tokenize

{{.VarName}} = tokenize({{.VarName}})`,
		Tests: []string{
			"stored {{.VarName}} never contains the primary account number",
		},
	},
	{
		Key:         "EU AI ACT-AUTOMATED_",
		Language:    "python",
		Description: "Route automated decisions through human review",
		Fix: `{{.Decision}} = {{.FunctionName}}(subject)
if requires_human_review({{.Decision}}):
    {{.Decision}} = queue_for_review({{.Decision}})`,
		Tests: []string{
			"a borderline {{.Decision}} is queued for review",
		},
	},
}

var javascriptTemplates = []Template{
	{
		Key:         "SEC-HARDCODED_",
		Language:    "javascript",
		Description: "Load {{.VarName}} from the {{.EnvVarName}} environment variable instead of hardcoding it",
		Fix:         `const {{.VarName}} = process.env.{{.EnvVarName}};`,
		Tests: []string{
			"{{.VarName}} is read from process.env.{{.EnvVarName}}",
		},
	},
	{
		Key:         "SEC-SQL_INJECT",
		Language:    "javascript",
		Description: "Pass values as query parameters instead of concatenating them into SQL",
		Fix:         `const result = await db.query({{.Query}}, params);`,
	},
	{
		Key:         "SEC-WEAK_CRYPT",
		Language:    "javascript",
		Description: "Replace the weak hash with SHA-256",
		Fix:         `const {{.VarName}} = crypto.createHash('sha256').update(data).digest('hex');`,
	},
	{
		Key:         "GDPR-PII_LOGGIN",
		Language:    "javascript",
		Description: "Remove {{.DataType}} from log output",
		Fix:         `logger.info('{{.DataType}} event processed');`,
	},
}

var goTemplates = []Template{
	{
		Key:         "SEC-HARDCODED_",
		Language:    "go",
		Description: "Load {{.VarName}} from the {{.EnvVarName}} environment variable instead of hardcoding it",
		Fix:         `{{.VarName}} := os.Getenv("{{.EnvVarName}}")`,
	},
	{
		Key:         "SEC-WEAK_CRYPT",
		Language:    "go",
		Description: "Replace the weak hash with SHA-256",
		Fix:         `{{.VarName}} := sha256.Sum256(data)`,
	},
	{
		Key:         "SEC-TLS_VERIFI",
		Language:    "go",
		Description: "Keep certificate verification enabled",
		Fix: `tlsConfig := &tls.Config{
	MinVersion: tls.VersionTLS12,
}`,
	},
}

// builtinTemplates returns the template table in lookup order.
func builtinTemplates() []Template {
	var out []Template
	out = append(out, pythonTemplates...)
	out = append(out, javascriptTemplates...)
	out = append(out, forLanguage("typescript", javascriptTemplates)...)
	out = append(out, goTemplates...)
	return out
}

func forLanguage(language string, templates []Template) []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		t.Language = language
		out[i] = t
	}
	return out
}

// normalizeKey makes dashed codes and underscore keys comparable.
func normalizeKey(code string) string {
	return strings.ToUpper(strings.ReplaceAll(code, "-", "_"))
}

// keyPrefix returns the part of a template key before the first dash.
func keyPrefix(key string) string {
	prefix, _, _ := strings.Cut(key, "-")
	return prefix
}
