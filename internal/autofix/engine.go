package autofix

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/complyscan/internal/analyzer"
)

// TemplateConfidence is reported for every template based fix.
const TemplateConfidence = 0.75

const (
	defaultVarName      = "value"
	defaultEnvVarName   = "SECRET_KEY"
	defaultDataType     = "data"
	defaultDecision     = "decision"
	defaultFunctionName = "evaluate"
	defaultQuery        = "query"
)

// Status is the lifecycle state of a fix.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusApplied   Status = "applied"
	StatusRejected  Status = "rejected"
)

// ErrInvalidTransition is returned when a fix is applied or rejected twice.
var ErrInvalidTransition = errors.New("fix is no longer in generated state")

// AutoFix is a proposed remediation of a single violation.
// Diff is illustrative only; OriginalCode and FixedCode are the source of truth.
type AutoFix struct {
	ViolationID    string   `json:"violation_id"`
	FilePath       string   `json:"file_path"`
	OriginalCode   string   `json:"original_code"`
	FixedCode      string   `json:"fixed_code"`
	Diff           string   `json:"diff"`
	Description    string   `json:"description"`
	Confidence     float64  `json:"confidence"`
	Status         Status   `json:"status"`
	TestsGenerated []string `json:"tests_generated,omitempty"`
}

// Generator produces fixes for violations no template covers.
type Generator interface {
	GenerateFix(ctx context.Context, v analyzer.Violation, language string) (*AutoFix, error)
}

// Engine looks up and fills fix templates.
type Engine struct {
	templates []Template
	generator Generator
	logger    hclog.Logger
}

// NewEngine creates an Engine over the built-in templates. generator may be nil.
func NewEngine(generator Generator, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{
		templates: builtinTemplates(),
		generator: generator,
		logger:    logger,
	}
}

// Templates returns the template table in lookup order.
func (e *Engine) Templates() []Template {
	return e.templates
}

// Lookup finds the template for a violation code: an exact match on the normalised
// code first, then the first template of the language whose key prefix occurs in code.
func (e *Engine) Lookup(code, language string) (Template, bool) {
	normalized := normalizeKey(code)
	for _, t := range e.templates {
		if t.Language == language && normalizeKey(t.Key) == normalized {
			return t, true
		}
	}
	for _, t := range e.templates {
		if t.Language == language && strings.Contains(code, keyPrefix(t.Key)) {
			return t, true
		}
	}
	return Template{}, false
}

// GenerateFix returns a template fix for v or nil when no template applies or a
// template cannot be filled. An empty language falls back to the violation metadata.
func (e *Engine) GenerateFix(v analyzer.Violation, language string) *AutoFix {
	if language == "" {
		language = v.MetadataString(analyzer.MetaLanguage)
	}

	tmpl, ok := e.Lookup(v.Code, language)
	if !ok {
		e.logger.Debug("no fix template", "code", v.Code, "language", language)
		return nil
	}

	data := fillData(v)
	fixed, err := fill(tmpl.Key+"/fix", tmpl.Fix, data)
	if err != nil {
		e.logger.Warn("failed to fill fix template", "template", tmpl.Key, "language", language, "error", err)
		return nil
	}
	description, err := fill(tmpl.Key+"/description", tmpl.Description, data)
	if err != nil {
		e.logger.Warn("failed to fill fix description", "template", tmpl.Key, "language", language, "error", err)
		return nil
	}

	var tests []string
	for i, source := range tmpl.Tests {
		test, err := fill(fmt.Sprintf("%s/test%d", tmpl.Key, i), source, data)
		if err != nil {
			e.logger.Warn("failed to fill fix test", "template", tmpl.Key, "language", language, "error", err)
			return nil
		}
		tests = append(tests, test)
	}

	original := data["OriginalCode"]
	return &AutoFix{
		ViolationID:    v.ID,
		FilePath:       v.FilePath,
		OriginalCode:   original,
		FixedCode:      fixed,
		Diff:           RenderDiff(original, fixed),
		Description:    description,
		Confidence:     TemplateConfidence,
		Status:         StatusGenerated,
		TestsGenerated: tests,
	}
}

// Fix tries a template fix first and falls back to the generator. It returns nil
// without an error when neither can produce a fix.
func (e *Engine) Fix(ctx context.Context, v analyzer.Violation, language string) (*AutoFix, error) {
	if fix := e.GenerateFix(v, language); fix != nil {
		return fix, nil
	}
	if e.generator == nil {
		return nil, nil
	}
	if language == "" {
		language = v.MetadataString(analyzer.MetaLanguage)
	}

	fix, err := e.generator.GenerateFix(ctx, v, language)
	if err != nil {
		return nil, fmt.Errorf("generate fix for %s: %w", v.Code, err)
	}
	if fix == nil {
		return nil, nil
	}
	if fix.ViolationID == "" {
		fix.ViolationID = v.ID
	}
	if fix.FilePath == "" {
		fix.FilePath = v.FilePath
	}
	if fix.Status == "" {
		fix.Status = StatusGenerated
	}
	fix.Diff = RenderDiff(fix.OriginalCode, fix.FixedCode)
	return fix, nil
}

// Apply marks a generated fix as applied.
func (e *Engine) Apply(fix *AutoFix) error {
	return e.transition(fix, StatusApplied)
}

// Reject marks a generated fix as rejected.
func (e *Engine) Reject(fix *AutoFix) error {
	return e.transition(fix, StatusRejected)
}

func (e *Engine) transition(fix *AutoFix, to Status) error {
	if fix == nil {
		return fmt.Errorf("fix is nil")
	}
	if fix.Status != StatusGenerated {
		return fmt.Errorf("cannot mark fix %s as %s: %w", fix.ViolationID, to, ErrInvalidTransition)
	}
	fix.Status = to
	e.logger.Debug("fix status changed", "violation", fix.ViolationID, "status", to)
	return nil
}

// RenderDiff lists every non-blank original line prefixed with '-' followed by
// every non-blank fixed line prefixed with '+'.
func RenderDiff(original, fixed string) string {
	var b strings.Builder
	writeLines(&b, '-', original)
	writeLines(&b, '+', fixed)
	return b.String()
}

func writeLines(b *strings.Builder, marker byte, text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteByte(marker)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

var (
	varNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\w+)\s*:?=`),
		regexp.MustCompile(`const\s+(\w+)`),
		regexp.MustCompile(`let\s+(\w+)`),
		regexp.MustCompile(`var\s+(\w+)`),
	}
	functionNamePattern = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)
)

// extractVarName returns the first variable name found in evidence, then in the line.
func extractVarName(sources ...string) string {
	for _, pattern := range varNamePatterns {
		for _, source := range sources {
			if m := pattern.FindStringSubmatch(source); m != nil {
				return m[1]
			}
		}
	}
	return defaultVarName
}

func extractFunctionName(source string) string {
	if m := functionNamePattern.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return defaultFunctionName
}

// fillData resolves the placeholder values for v.
func fillData(v analyzer.Violation) map[string]string {
	original := v.MetadataString(analyzer.MetaLineContent)
	if original == "" {
		original = v.Evidence
	}

	varName := extractVarName(v.Evidence, original)
	envVarName := defaultEnvVarName
	if varName != defaultVarName {
		envVarName = strings.ToUpper(varName)
	}

	dataType := v.CategoryName()
	if dataType == "" {
		dataType = defaultDataType
	}

	return map[string]string{
		"OriginalCode": original,
		"VarName":      varName,
		"EnvVarName":   envVarName,
		"DataType":     dataType,
		"Decision":     defaultDecision,
		"FunctionName": extractFunctionName(original),
		"Query":        defaultQuery,
	}
}

// fill executes source with data. Unknown placeholders are an error.
func fill(name, source string, data map[string]string) (string, error) {
	t, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
		}).
		Parse(source)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
