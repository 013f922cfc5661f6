package fix

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/internal/autofix"
	"github.com/scan-io-git/complyscan/internal/scanner"
	"github.com/scan-io-git/complyscan/pkg/shared"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/logger"
)

// RunOptionsFix holds the arguments for the fix command.
type RunOptionsFix struct {
	InputPath  string
	Language   string
	OutputPath string
}

// FixResult is the output of the fix command.
type FixResult struct {
	Fixes   []*autofix.AutoFix `json:"fixes"`
	Unfixed []string           `json:"unfixed"`
}

// Global variables for configuration and command arguments
var (
	AppConfig       *config.Config
	fixOptions      RunOptionsFix
	exampleFixUsage = `  # Generating fixes for the violations of an analyse report
  complyscan fix --input /path/to/complyscan-analyse-report.json

  # Generating fixes for the diagnostics of a check result, forcing the template language
  complyscan fix --input check.json --language python --output /path/to/fixes.json`
)

// FixCmd represents the fix command.
var FixCmd = &cobra.Command{
	Use:                   "fix --input PATH [--language LANGUAGE] [--output PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixUsage,
	Short:                 "Generates template fixes for reported violations",
	Long: `Generates remediation suggestions from built-in fix templates for the violations of an
analyse report, a check result or a plain JSON array of violations. Violations no template
covers are listed as unfixed.`,
	RunE: runFixCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFixCommand executes the fix command.
func runFixCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-fix")

	if err := validateFixArgs(&fixOptions, args); err != nil {
		logger.Error("invalid fix arguments", "error", err)
		return err
	}

	violations, err := scanner.ReadViolations(fixOptions.InputPath)
	if err != nil {
		logger.Error("failed to read violations", "path", fixOptions.InputPath, "error", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine := autofix.NewEngine(nil, logger.Named("autofix"))
	result := FixResult{
		Fixes:   []*autofix.AutoFix{},
		Unfixed: []string{},
	}
	for _, v := range violations {
		fix, err := engine.Fix(ctx, v, fixOptions.Language)
		if err != nil {
			logger.Warn("failed to generate fix", "violation", v.ID, "code", v.Code, "error", err)
		}
		if fix == nil {
			result.Unfixed = append(result.Unfixed, v.ID)
			continue
		}
		result.Fixes = append(result.Fixes, fix)
	}

	if err := shared.WriteResult(result, fixOptions.OutputPath, "fix", cmd.OutOrStdout(), logger); err != nil {
		logger.Error("failed to write result", "error", err)
		return err
	}

	logger.Info("fix command completed successfully", "fixes", len(result.Fixes), "unfixed", len(result.Unfixed))
	return nil
}

// Initialize flags for the fix command.
func init() {
	FixCmd.Flags().StringVarP(&fixOptions.InputPath, "input", "i", "", "Path to a JSON report or array of violations.")
	FixCmd.Flags().StringVarP(&fixOptions.Language, "language", "l", "", "Template language. Defaults to the language recorded on each violation.")
	FixCmd.Flags().StringVarP(&fixOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	FixCmd.Flags().BoolP("help", "h", false, "Show help for the fix command.")
}
