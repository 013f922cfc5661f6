package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/scan-io-git/complyscan/internal/rules"
)

const (
	// PatternConfidence is reported for every regex based detection.
	PatternConfidence = 0.85

	// baselineToken prefixes codes of rules that have no regulation.
	baselineToken = "SEC"

	codeNameLength    = 10
	lineContentLength = 200
)

// Metadata keys set on every violation.
const (
	MetaPatternName = "pattern_name"
	MetaLanguage    = "language"
	MetaLineContent = "line_content"
)

// violationNamespace scopes the name-based UUIDs of violations.
var violationNamespace = uuid.MustParse("6f0b3c55-2f44-4b4a-9a57-3f6a4f1e8c21")

// Violation is a single compliance finding located in a file.
type Violation struct {
	ID               string                 `json:"id"`
	FilePath         string                 `json:"file_path"`
	LineStart        int                    `json:"line_start"`
	LineEnd          int                    `json:"line_end"`
	ColumnStart      int                    `json:"column_start"`
	ColumnEnd        int                    `json:"column_end"`
	Code             string                 `json:"code"`
	Message          string                 `json:"message"`
	Severity         rules.Severity         `json:"severity"`
	Regulation       *string                `json:"regulation"`
	ArticleReference *string                `json:"article_reference"`
	Category         *string                `json:"category"`
	Evidence         string                 `json:"evidence"`
	Confidence       float64                `json:"confidence"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// MetadataString returns a string metadata value or an empty string.
func (v Violation) MetadataString(key string) string {
	value, _ := v.Metadata[key].(string)
	return value
}

// RegulationName returns the regulation or an empty string for baseline rules.
func (v Violation) RegulationName() string {
	if v.Regulation == nil {
		return ""
	}
	return *v.Regulation
}

// CategoryName returns the category or an empty string.
func (v Violation) CategoryName() string {
	if v.Category == nil {
		return ""
	}
	return *v.Category
}

// BuildCode derives the violation code of a rule: the upper-cased regulation, or SEC
// for baseline rules, followed by the first ten characters of the upper-cased rule name.
func BuildCode(regulation, ruleName string) string {
	token := baselineToken
	if regulation != "" {
		token = strings.ToUpper(regulation)
	}
	return token + "-" + truncate(strings.ToUpper(ruleName), codeNameLength)
}

// newViolation builds a violation for a match spanning [start, end) bytes of content.
func newViolation(path, lang string, lineNumber int, content string, start, end int, rule *rules.CompiledRule) Violation {
	columnStart := utf8.RuneCountInString(content[:start])
	columnEnd := columnStart + utf8.RuneCountInString(content[start:end])
	code := BuildCode(rule.Regulation, rule.Name)

	return Violation{
		ID:               violationID(path, lineNumber, columnStart, columnEnd, code),
		FilePath:         path,
		LineStart:        lineNumber,
		LineEnd:          lineNumber,
		ColumnStart:      columnStart,
		ColumnEnd:        columnEnd,
		Code:             code,
		Message:          rule.Message,
		Severity:         rule.Severity,
		Regulation:       optional(rule.Regulation),
		ArticleReference: optional(rule.Article),
		Category:         optional(rule.Category),
		Evidence:         content[start:end],
		Confidence:       PatternConfidence,
		Metadata: map[string]interface{}{
			MetaPatternName: rule.Name,
			MetaLanguage:    lang,
			MetaLineContent: truncate(content, lineContentLength),
		},
	}
}

// violationID is stable across runs for the same location and code.
func violationID(path string, line, columnStart, columnEnd int, code string) string {
	name := fmt.Sprintf("%s:%d:%d:%d:%s", path, line, columnStart, columnEnd, code)
	return uuid.NewSHA1(violationNamespace, []byte(name)).String()
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// truncate keeps the first n characters of value.
func truncate(value string, n int) string {
	if utf8.RuneCountInString(value) <= n {
		return value
	}
	runes := []rune(value)
	return string(runes[:n])
}
