package fix

import (
	"fmt"
	"os"
	"strings"
)

// validateFixArgs validates the arguments provided to the fix command.
func validateFixArgs(options *RunOptionsFix, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	if options.InputPath == "" {
		return fmt.Errorf("the 'input' flag must be specified")
	}
	if _, err := os.Stat(options.InputPath); os.IsNotExist(err) {
		return fmt.Errorf("the input file does not exist: %v", options.InputPath)
	}
	return nil
}
