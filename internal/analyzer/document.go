package analyzer

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// DocumentResult is the outcome of a whole-document analysis.
type DocumentResult struct {
	URI             string      `json:"uri"`
	Version         int         `json:"version"`
	Diagnostics     []Violation `json:"diagnostics"`
	AnalysisTimeMs  float64     `json:"analysis_time_ms"`
	PatternsChecked int         `json:"patterns_checked"`
}

// DocumentAnalyzer checks complete documents, typically on save in an editor.
// Analyses read the current rule snapshot without locking; rule changes build a
// new snapshot and swap it in, so a running analysis never sees a partial update.
type DocumentAnalyzer struct {
	set       atomic.Pointer[rules.PatternSet]
	threshold atomic.Value

	// mu serialises rule changes
	mu sync.Mutex

	versionsMu sync.Mutex
	versions   map[string]int

	logger hclog.Logger
}

// NewDocumentAnalyzer creates a DocumentAnalyzer over set reporting every severity.
func NewDocumentAnalyzer(set *rules.PatternSet, logger hclog.Logger) *DocumentAnalyzer {
	if set == nil {
		panic("analyzer: NewDocumentAnalyzer called with a nil pattern set")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	d := &DocumentAnalyzer{
		versions: make(map[string]int),
		logger:   logger,
	}
	d.set.Store(set)
	d.threshold.Store(rules.SeverityInfo)
	return d
}

// Rules returns the current rule snapshot.
func (d *DocumentAnalyzer) Rules() *rules.PatternSet {
	return d.set.Load()
}

// SetSeverityThreshold hides diagnostics less severe than threshold.
func (d *DocumentAnalyzer) SetSeverityThreshold(threshold rules.Severity) error {
	if threshold.Rank() < 0 {
		return fmt.Errorf("unknown severity %q", threshold)
	}
	d.threshold.Store(threshold)
	return nil
}

// SeverityThreshold returns the current threshold.
func (d *DocumentAnalyzer) SeverityThreshold() rules.Severity {
	return d.threshold.Load().(rules.Severity)
}

// AddCustomPattern compiles rule and makes it active for subsequent analyses.
// A rule with an existing name replaces it.
func (d *DocumentAnalyzer) AddCustomPattern(rule rules.Rule) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.set.Load().WithRule(rule)
	if err != nil {
		d.logger.Warn("custom pattern rejected", "rule", rule.Name, "error", err)
		return err
	}
	d.set.Store(next)
	d.logger.Debug("custom pattern added", "rule", rule.Name, "patterns", next.Len())
	return nil
}

// RemoveCustomPattern deactivates the named rule. It reports whether the rule existed.
func (d *DocumentAnalyzer) RemoveCustomPattern(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, ok := d.set.Load().WithoutRule(name)
	if ok {
		d.set.Store(next)
		d.logger.Debug("custom pattern removed", "rule", name, "patterns", next.Len())
	}
	return ok
}

// AnalyzeDocument checks every line of content. Content that is not valid text
// yields no diagnostics.
func (d *DocumentAnalyzer) AnalyzeDocument(uri, content, lang string) DocumentResult {
	start := time.Now()
	set := d.set.Load()
	threshold := d.SeverityThreshold()

	result := DocumentResult{
		URI:             uri,
		Version:         d.nextVersion(uri),
		Diagnostics:     []Violation{},
		PatternsChecked: set.Len(),
	}

	if !files.IsText([]byte(content)) {
		d.logger.Warn("skipping document with undecodable content", "uri", uri)
		result.AnalysisTimeMs = elapsedMs(start)
		return result
	}

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for _, violation := range matchLine(uri, lang, i+1, line, set) {
			if violation.Severity.AtLeast(threshold) {
				result.Diagnostics = append(result.Diagnostics, violation)
			}
		}
	}

	result.AnalysisTimeMs = elapsedMs(start)
	d.logger.Debug("document analysed", "uri", uri, "version", result.Version, "diagnostics", len(result.Diagnostics))
	return result
}

func (d *DocumentAnalyzer) nextVersion(uri string) int {
	d.versionsMu.Lock()
	defer d.versionsMu.Unlock()
	d.versions[uri]++
	return d.versions[uri]
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
