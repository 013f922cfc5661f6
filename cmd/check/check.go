package check

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/internal/analyzer"
	"github.com/scan-io-git/complyscan/internal/scanner"
	"github.com/scan-io-git/complyscan/pkg/shared"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/logger"
)

// RunOptionsCheck holds the arguments for the check command.
type RunOptionsCheck struct {
	Language          string
	Regulations       []string
	SeverityThreshold string
	OutputPath        string
}

// CheckResult is the output of the check command.
type CheckResult struct {
	Regulations     []string                  `json:"regulations"`
	PatternsChecked int                       `json:"patterns_checked"`
	Violations      int                       `json:"violations"`
	Documents       []analyzer.DocumentResult `json:"documents"`
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	checkOptions      RunOptionsCheck
	exampleCheckUsage = `  # Checking complete files, the language is detected from the extension
  complyscan check app/user.py app/billing.py

  # Checking a file with an explicit language against HIPAA rules only
  complyscan check --language python --regulations HIPAA scripts/export

  # Reporting only high and critical diagnostics to a file
  complyscan check --severity high --output /path/to/reports src/handler.ts`
)

// CheckCmd represents the check command.
var CheckCmd = &cobra.Command{
	Use:                   "check [--language LANGUAGE] [--regulations LIST] [--severity LEVEL] [--output PATH] FILE...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Checks complete files for compliance violations",
	Long: `Checks the full content of files, the way an editor does on save, and reports every
violation found on any line as a diagnostic.`,
	RunE: runCheckCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runCheckCommand executes the check command.
func runCheckCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-check")

	if err := validateCheckArgs(&checkOptions, args); err != nil {
		logger.Error("invalid check arguments", "error", err)
		return err
	}

	s, err := scanner.New(AppConfig, scanner.Options{
		Regulations:       checkOptions.Regulations,
		SeverityThreshold: checkOptions.SeverityThreshold,
	}, logger)
	if err != nil {
		logger.Error("failed to initialise scanner", "error", err)
		return err
	}

	documents := s.CheckFiles(args, checkOptions.Language)
	result := CheckResult{
		Regulations:     s.Regulations(),
		PatternsChecked: s.Rules().Len(),
		Documents:       documents,
	}
	if result.Regulations == nil {
		result.Regulations = []string{}
	}
	for _, document := range documents {
		result.Violations += len(document.Diagnostics)
	}

	if err := shared.WriteResult(result, checkOptions.OutputPath, "check", cmd.OutOrStdout(), logger); err != nil {
		logger.Error("failed to write result", "error", err)
		return err
	}

	logger.Info("check command completed successfully", "files", len(documents), "violations", result.Violations)
	return nil
}

// Initialize flags for the check command.
func init() {
	CheckCmd.Flags().StringVarP(&checkOptions.Language, "language", "l", "", "Language of the files. Detected from the file extension when empty.")
	CheckCmd.Flags().StringSliceVarP(&checkOptions.Regulations, "regulations", "r", nil, "Comma separated list of regulations to check. Defaults to the configured regulations.")
	CheckCmd.Flags().StringVar(&checkOptions.SeverityThreshold, "severity", "", "Minimum severity to report (info, low, medium, high, critical).")
	CheckCmd.Flags().StringVarP(&checkOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	CheckCmd.Flags().BoolP("help", "h", false, "Show help for the check command.")
}
