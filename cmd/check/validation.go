package check

import (
	"fmt"
	"os"

	"github.com/scan-io-git/complyscan/internal/rules"
)

// validateCheckArgs validates the arguments provided to the check command.
func validateCheckArgs(options *RunOptionsCheck, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one file must be specified")
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("the file does not exist: %v", path)
		}
		if err != nil {
			return fmt.Errorf("failed to access %q: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("'%s' is a directory, not a file", path)
		}
	}

	if options.SeverityThreshold != "" {
		if _, err := rules.ParseSeverity(options.SeverityThreshold); err != nil {
			return fmt.Errorf("invalid 'severity' flag: %w", err)
		}
	}

	return nil
}
