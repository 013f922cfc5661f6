package scanner

import (
	"github.com/scan-io-git/complyscan/internal/analyzer"
	"github.com/scan-io-git/complyscan/internal/gate"
	"github.com/scan-io-git/complyscan/internal/git"
	"github.com/scan-io-git/complyscan/internal/rules"
)

// Report is the outcome of a diff-mode run.
type Report struct {
	Regulations       []string                `json:"regulations"`
	SeverityThreshold rules.Severity          `json:"severity_threshold"`
	PatternsChecked   int                     `json:"patterns_checked"`
	AnalysisTimeMs    float64                 `json:"analysis_time_ms"`
	Repository        *git.RepositoryMetadata `json:"repository,omitempty"`
	Summary           Summary                 `json:"summary"`
	Files             []analyzer.FileResult   `json:"files"`
	Violations        []analyzer.Violation    `json:"violations"`
	Gate              *gate.Result            `json:"gate,omitempty"`
}

// Summary aggregates the violations of a report.
type Summary struct {
	Files        int                    `json:"files"`
	SkippedFiles int                    `json:"skipped_files"`
	Violations   int                    `json:"violations"`
	Suppressed   int                    `json:"suppressed"`
	BySeverity   map[rules.Severity]int `json:"by_severity"`
	ByRegulation map[string]int         `json:"by_regulation"`
}

func newReport(regulations []string, threshold rules.Severity, patterns int, results []analyzer.FileResult) *Report {
	if regulations == nil {
		regulations = []string{}
	}
	report := &Report{
		Regulations:       regulations,
		SeverityThreshold: threshold,
		PatternsChecked:   patterns,
		Files:             results,
	}
	report.summarize()
	return report
}

// summarize rebuilds Violations and Summary from Files.
func (r *Report) summarize() {
	r.Violations = analyzer.Flatten(r.Files)
	if r.Violations == nil {
		r.Violations = []analyzer.Violation{}
	}

	r.Summary = Summary{
		Files:        len(r.Files),
		Violations:   len(r.Violations),
		Suppressed:   r.Summary.Suppressed,
		BySeverity:   make(map[rules.Severity]int),
		ByRegulation: make(map[string]int),
	}
	for _, result := range r.Files {
		if result.Skipped {
			r.Summary.SkippedFiles++
		}
	}
	for _, v := range r.Violations {
		r.Summary.BySeverity[v.Severity]++
		regulation := v.RegulationName()
		if regulation == "" {
			regulation = "SEC"
		}
		r.Summary.ByRegulation[regulation]++
	}
}
