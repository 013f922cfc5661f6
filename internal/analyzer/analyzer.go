package analyzer

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/complyscan/internal/diff"
	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

const defaultCacheSize = 16

var (
	defaultCache     *rules.Cache
	defaultCacheOnce sync.Once
)

// AnalyzeFileDiff reports every rule match on the lines a diff adds.
// Deleted and context lines are never reported. Violations are ordered by line,
// then rule registration order, then match position.
func AnalyzeFileDiff(file diff.FileDiff, set *rules.PatternSet) []Violation {
	if set == nil {
		panic("analyzer: AnalyzeFileDiff called with a nil pattern set")
	}
	if file.Patch == "" {
		return nil
	}

	var violations []Violation
	for _, record := range diff.Parse(file.Patch) {
		if !record.IsAddition {
			continue
		}
		violations = append(violations, matchLine(file.Path, file.Language, record.NewLine(), record.Content, set)...)
	}
	return violations
}

// AnalyzeFileDiffForRegulations analyses a single file diff against the built-in
// rules of the enabled regulations plus the security baseline.
func AnalyzeFileDiffForRegulations(path, lang, patch string, enabled []string) []Violation {
	defaultCacheOnce.Do(func() {
		// the size is positive, NewCache cannot fail
		defaultCache, _ = rules.NewCache(defaultCacheSize, nil)
	})
	return AnalyzeFileDiff(diff.FileDiff{Path: path, Language: lang, Patch: patch}, defaultCache.Get(enabled))
}

// matchLine runs all compiled rules against one line.
func matchLine(path, lang string, lineNumber int, content string, set *rules.PatternSet) []Violation {
	var violations []Violation
	for _, rule := range set.Rules() {
		for _, loc := range rule.Regexp.FindAllStringIndex(content, -1) {
			if loc[0] == loc[1] {
				continue
			}
			violations = append(violations, newViolation(path, lang, lineNumber, content, loc[0], loc[1], rule))
		}
	}
	return violations
}

// FileResult is the outcome of analysing one file of a batch.
type FileResult struct {
	Path       string      `json:"path"`
	Language   string      `json:"language"`
	Violations []Violation `json:"violations"`
	Skipped    bool        `json:"skipped,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Analyzer runs diff-mode analysis over many files concurrently with a shared,
// read-only pattern set.
type Analyzer struct {
	rules   *rules.PatternSet
	threads int
	logger  hclog.Logger
}

// New creates an Analyzer. threads lower than one is treated as one.
func New(set *rules.PatternSet, threads int, logger hclog.Logger) *Analyzer {
	if set == nil {
		panic("analyzer: New called with a nil pattern set")
	}
	if threads < 1 {
		threads = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{rules: set, threads: threads, logger: logger}
}

// Rules returns the pattern set used by the analyzer.
func (a *Analyzer) Rules() *rules.PatternSet {
	return a.rules
}

// AnalyzeFiles analyses every file and returns one result per file in input order.
// A file that cannot be decoded as text is skipped with a warning and never fails the batch.
// The error is only set when ctx is cancelled; results of finished files are still returned.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, fileDiffs []diff.FileDiff) ([]FileResult, error) {
	a.logger.Info("analysis starting", "files", len(fileDiffs), "goroutines", a.threads, "rules", a.rules.Len())

	results := make([]FileResult, len(fileDiffs))
	for i, file := range fileDiffs {
		results[i] = FileResult{Path: file.Path, Language: file.Language, Violations: []Violation{}}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.threads)

	for i := range fileDiffs {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.analyzeFile(fileDiffs[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	total := 0
	for i := range results {
		total += len(results[i].Violations)
	}
	a.logger.Info("analysis finished", "files", len(fileDiffs), "violations", total)
	return results, err
}

func (a *Analyzer) analyzeFile(file diff.FileDiff) FileResult {
	result := FileResult{Path: file.Path, Language: file.Language, Violations: []Violation{}}
	if !files.IsText([]byte(file.Patch)) {
		a.logger.Warn("skipping file with undecodable content", "path", file.Path)
		result.Skipped = true
		result.Reason = files.ErrNotText.Error()
		return result
	}

	if violations := AnalyzeFileDiff(file, a.rules); violations != nil {
		result.Violations = violations
	}
	a.logger.Debug("file analysed", "path", file.Path, "violations", len(result.Violations))
	return result
}

// Flatten concatenates the violations of all results, keeping file order.
func Flatten(results []FileResult) []Violation {
	var violations []Violation
	for _, result := range results {
		violations = append(violations, result.Violations...)
	}
	return violations
}
