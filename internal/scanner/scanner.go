package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/complyscan/internal/analyzer"
	"github.com/scan-io-git/complyscan/internal/baseline"
	"github.com/scan-io-git/complyscan/internal/diff"
	"github.com/scan-io-git/complyscan/internal/gate"
	"github.com/scan-io-git/complyscan/internal/git"
	"github.com/scan-io-git/complyscan/internal/language"
	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// Options override configuration values for a single run. Zero values keep the configuration.
type Options struct {
	Regulations       []string
	Threads           int
	SeverityThreshold string
}

// Scanner runs compliance analyses with the rules selected by the configuration.
type Scanner struct {
	regulations []string
	threshold   rules.Severity
	threads     int
	set         *rules.PatternSet
	logger      hclog.Logger
}

// New compiles the rules of the enabled regulations together with the custom rules
// from the configuration.
func New(cfg *config.Config, opts Options, logger hclog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	regulations := config.SetThen(opts.Regulations, config.GetRegulations(cfg))
	threads := config.SetThen(opts.Threads, config.GetThreads(cfg))

	threshold, err := rules.ParseSeverity(config.SetThen(opts.SeverityThreshold, config.GetSeverityThreshold(cfg)))
	if err != nil {
		return nil, fmt.Errorf("invalid severity threshold: %w", err)
	}

	custom, err := rules.LoadCustomRules(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom rules: %w", err)
	}

	var set *rules.PatternSet
	if len(custom) == 0 {
		cache, err := rules.NewCache(config.GetCacheSize(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule cache: %w", err)
		}
		set = cache.Get(regulations)
	} else {
		set = rules.CompileEnabled(regulations, custom, logger)
	}

	logger.Debug("scanner initialised", "regulations", regulations, "rules", set.Len(), "custom_rules", len(custom), "threshold", threshold)
	return &Scanner{
		regulations: regulations,
		threshold:   threshold,
		threads:     threads,
		set:         set,
		logger:      logger,
	}, nil
}

// Rules returns the compiled rules used by the scanner.
func (s *Scanner) Rules() *rules.PatternSet {
	return s.set
}

// Regulations returns the enabled regulations.
func (s *Scanner) Regulations() []string {
	return s.regulations
}

// Threshold returns the minimum reported severity.
func (s *Scanner) Threshold() rules.Severity {
	return s.threshold
}

// AnalyzeDiff analyses the output of `git diff`.
func (s *Scanner) AnalyzeDiff(ctx context.Context, raw string) (*Report, error) {
	fileDiffs, err := diff.SplitMultiFile(raw)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeFileDiffs(ctx, fileDiffs)
}

// AnalyzeRepository analyses the changes between two revisions of a local repository.
func (s *Scanner) AnalyzeRepository(ctx context.Context, client *git.Client, repoPath, base, head string, filters []string) (*Report, error) {
	fileDiffs, err := client.FileDiffs(ctx, repoPath, base, head, filters)
	if err != nil {
		return nil, err
	}

	report, err := s.AnalyzeFileDiffs(ctx, fileDiffs)
	if err != nil {
		return report, err
	}

	md, err := git.CollectRepositoryMetadata(repoPath)
	if err != nil {
		s.logger.Warn("failed to collect repository metadata", "path", repoPath, "error", err)
	}
	report.Repository = md
	return report, nil
}

// AnalyzeFileDiffs analyses already split file diffs.
func (s *Scanner) AnalyzeFileDiffs(ctx context.Context, fileDiffs []diff.FileDiff) (*Report, error) {
	start := time.Now()
	results, err := analyzer.New(s.set, s.threads, s.logger).AnalyzeFiles(ctx, fileDiffs)

	for i := range results {
		results[i].Violations = s.filter(results[i].Violations)
	}
	report := newReport(s.regulations, s.threshold, s.set.Len(), results)
	report.AnalysisTimeMs = float64(time.Since(start).Microseconds()) / 1000
	return report, err
}

// ApplyBaseline drops the violations of report that correlate to a known violation
// of an earlier run and rebuilds the summary.
func (s *Scanner) ApplyBaseline(report *Report, known []analyzer.Violation) {
	if len(known) == 0 {
		return
	}
	suppressed := 0
	for i := range report.Files {
		fresh, dropped := baseline.Filter(report.Files[i].Violations, known)
		if len(dropped) == 0 {
			continue
		}
		report.Files[i].Violations = fresh
		suppressed += len(dropped)
	}
	report.Summary.Suppressed += suppressed
	report.summarize()
	s.logger.Info("baseline applied", "known", len(known), "suppressed", suppressed, "remaining", report.Summary.Violations)
}

// CheckFiles analyses complete files. An empty lang detects the language of each file
// from its extension. Files that cannot be read as text yield no diagnostics.
func (s *Scanner) CheckFiles(paths []string, lang string) []analyzer.DocumentResult {
	documents := analyzer.NewDocumentAnalyzer(s.set, s.logger)
	if err := documents.SetSeverityThreshold(s.threshold); err != nil {
		s.logger.Warn("failed to set severity threshold", "error", err)
	}

	results := make([]analyzer.DocumentResult, 0, len(paths))
	for _, path := range paths {
		fileLang := lang
		if fileLang == "" {
			fileLang = language.Detect(path)
		}

		content, err := files.ReadTextFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
			content = ""
		}
		results = append(results, documents.AnalyzeDocument(path, content, fileLang))
	}
	return results
}

// ApplyGate evaluates expression against the violations of report and records the outcome.
// An empty expression always passes.
func (s *Scanner) ApplyGate(report *Report, expression string) (bool, error) {
	if expression == "" {
		return true, nil
	}
	g, err := gate.New(expression)
	if err != nil {
		return false, fmt.Errorf("invalid gate expression: %w", err)
	}
	result, err := g.Evaluate(report.Violations)
	if err != nil {
		return false, err
	}
	report.Gate = &result
	s.logger.Info("gate evaluated", "expression", expression, "passed", result.Passed, "failed", len(result.Failed))
	return result.Passed, nil
}

func (s *Scanner) filter(violations []analyzer.Violation) []analyzer.Violation {
	if s.threshold == rules.SeverityInfo {
		return violations
	}
	var kept []analyzer.Violation
	for _, v := range violations {
		if v.Severity.AtLeast(s.threshold) {
			kept = append(kept, v)
		}
	}
	return kept
}
