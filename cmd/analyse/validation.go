package analyse

import (
	"fmt"
	"os"
	"strings"

	"github.com/scan-io-git/complyscan/internal/rules"
)

const maxThreads = 64

// validateAnalyseArgs validates the arguments provided to the analyse command.
func validateAnalyseArgs(options *RunOptionsAnalyse, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}

	if options.DiffPath == "" && options.RepoPath == "" {
		return fmt.Errorf("either 'diff' or 'repo' flag must be specified")
	}
	if options.DiffPath != "" && options.RepoPath != "" {
		return fmt.Errorf("you cannot use a 'diff' flag and a 'repo' flag at the same time")
	}

	if options.DiffPath != "" {
		if len(options.Paths) > 0 || options.Base != "" || options.Head != "" {
			return fmt.Errorf("the 'base', 'head' and 'path' flags can only be used with the 'repo' flag")
		}
		if options.DiffPath != "-" {
			if _, err := os.Stat(options.DiffPath); os.IsNotExist(err) {
				return fmt.Errorf("the diff file does not exist: %v", options.DiffPath)
			}
		}
	}

	if options.RepoPath != "" {
		if _, err := os.Stat(options.RepoPath); os.IsNotExist(err) {
			return fmt.Errorf("the repository path does not exist: %v", options.RepoPath)
		}
		if options.Base == "" || options.Head == "" {
			return fmt.Errorf("the 'base' and 'head' flags must be specified with the 'repo' flag")
		}
	}

	if options.BaselinePath != "" {
		if _, err := os.Stat(options.BaselinePath); os.IsNotExist(err) {
			return fmt.Errorf("the baseline file does not exist: %v", options.BaselinePath)
		}
	}

	for _, regulation := range options.Regulations {
		if strings.TrimSpace(regulation) == "" {
			return fmt.Errorf("the 'regulations' flag cannot contain empty values")
		}
	}

	if options.SeverityThreshold != "" {
		if _, err := rules.ParseSeverity(options.SeverityThreshold); err != nil {
			return fmt.Errorf("invalid 'severity' flag: %w", err)
		}
	}

	if options.Threads < 0 || options.Threads > maxThreads {
		return fmt.Errorf("the 'threads' flag must be between 1 and %d", maxThreads)
	}

	return nil
}
