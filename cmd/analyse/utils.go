package analyse

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// Mode constants
const (
	ModeDiff       = "diff"
	ModeRepository = "repository"
)

// determineMode determines the diff source based on the validated options.
func determineMode(options *RunOptionsAnalyse) string {
	if options.RepoPath != "" {
		return ModeRepository
	}
	return ModeDiff
}

// readDiff reads a diff file, or stdin when path is '-'.
// Content is not checked here: files that are not text are skipped one by one during analysis.
func readDiff(path string, stdin io.Reader) (string, error) {
	if path != "-" {
		data, err := files.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read diff from stdin: %w", err)
	}
	return string(data), nil
}

// warnUnknownRegulations logs regulations that select no built-in rule.
// They are still honoured for custom rules.
func warnUnknownRegulations(regulations []string, logger hclog.Logger) {
	known := make(map[string]struct{})
	for _, regulation := range rules.Regulations() {
		known[regulation] = struct{}{}
	}
	for _, regulation := range regulations {
		if _, ok := known[regulation]; !ok {
			logger.Warn("regulation has no built-in rules, names are case-sensitive", "regulation", regulation)
		}
	}
}
