package analyse

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/internal/ci"
	"github.com/scan-io-git/complyscan/internal/git"
	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/internal/scanner"
	"github.com/scan-io-git/complyscan/pkg/shared"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/errors"
	"github.com/scan-io-git/complyscan/pkg/shared/logger"
)

// RunOptionsAnalyse holds the arguments for the analyse command.
type RunOptionsAnalyse struct {
	Regulations       []string
	DiffPath          string
	RepoPath          string
	Base              string
	Head              string
	Paths             []string
	OutputPath        string
	SeverityThreshold string
	Gate              string
	BaselinePath      string
	Threads           int
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	analyseOptions      RunOptionsAnalyse
	exampleAnalyseUsage = `  # Analysing a diff file against GDPR and HIPAA rules
  complyscan analyse --regulations GDPR,HIPAA --diff /path/to/changes.diff

  # Analysing a diff read from stdin
  git diff origin/main... | complyscan analyse --regulations GDPR --diff -

  # Analysing the changes between two revisions of a local repository
  complyscan analyse --regulations "EU AI Act" --repo /path/to/repo --base origin/main --head HEAD

  # Analysing a pull request inside GitHub Actions, GitLab CI or Bitbucket Pipelines, revisions are read from the environment
  complyscan analyse --repo .

  # Analysing only selected files with 4 concurrent workers and saving the report
  complyscan analyse --repo . --base 3f2a... --head HEAD --path app/user.py --path app/billing.py -j 4 --output /path/to/reports

  # Reporting only violations that are not already listed in a previous report
  complyscan analyse --diff changes.diff --baseline /path/to/previous-report.json

  # Failing the run when a critical violation is found
  complyscan analyse --regulations PCI-DSS --diff changes.diff --gate 'severity == "critical"'`
)

// AnalyseCmd represents the analyse command.
var AnalyseCmd = &cobra.Command{
	Use:                   "analyse [--regulations LIST] {--diff PATH | --repo PATH [--base REV] [--head REV] [--path FILE]...} [--severity LEVEL] [--baseline PATH] [--gate EXPRESSION] [-j THREADS_NUMBER] [--output PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyseUsage,
	Short:                 "Analyses the lines added by a diff for compliance violations",
	RunE:                  runAnalyseCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	AnalyseCmd.Long = generateLongDescription()
}

// runAnalyseCommand executes the analyse command.
func runAnalyseCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-analyse")

	if analyseOptions.RepoPath != "" && (analyseOptions.Base == "" || analyseOptions.Head == "") {
		revisions, err := ci.ResolveRevisions(logger.Named("ci"), analyseOptions.Base, analyseOptions.Head)
		if err != nil {
			logger.Error("failed to resolve revisions", "error", err)
			return err
		}
		analyseOptions.Base, analyseOptions.Head = revisions.Base, revisions.Head
	}

	if err := validateAnalyseArgs(&analyseOptions, args); err != nil {
		logger.Error("invalid analyse arguments", "error", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := scanner.New(AppConfig, scanner.Options{
		Regulations:       analyseOptions.Regulations,
		Threads:           analyseOptions.Threads,
		SeverityThreshold: analyseOptions.SeverityThreshold,
	}, logger)
	if err != nil {
		logger.Error("failed to initialise scanner", "error", err)
		return err
	}
	warnUnknownRegulations(s.Regulations(), logger)

	var report *scanner.Report
	switch determineMode(&analyseOptions) {
	case ModeDiff:
		raw, err := readDiff(analyseOptions.DiffPath, os.Stdin)
		if err != nil {
			logger.Error("failed to read diff", "path", analyseOptions.DiffPath, "error", err)
			return err
		}
		report, err = s.AnalyzeDiff(ctx, raw)
		if err != nil {
			logger.Error("failed to analyse diff", "error", err)
			return err
		}
	case ModeRepository:
		client, err := git.New(logger.Named("git"), AppConfig)
		if err != nil {
			logger.Error("failed to create git client", "error", err)
			return err
		}
		report, err = s.AnalyzeRepository(ctx, client, analyseOptions.RepoPath, analyseOptions.Base, analyseOptions.Head, analyseOptions.Paths)
		if err != nil {
			logger.Error("failed to analyse repository", "path", analyseOptions.RepoPath, "error", err)
			return err
		}
	}

	if analyseOptions.BaselinePath != "" {
		known, err := scanner.ReadViolations(analyseOptions.BaselinePath)
		if err != nil {
			logger.Error("failed to read baseline", "path", analyseOptions.BaselinePath, "error", err)
			return err
		}
		s.ApplyBaseline(report, known)
	}

	expression := config.SetThen(analyseOptions.Gate, config.GetGateExpression(AppConfig))
	passed, err := s.ApplyGate(report, expression)
	if err != nil {
		logger.Error("failed to evaluate gate", "error", err)
		return err
	}

	if err := shared.WriteResult(report, analyseOptions.OutputPath, "analyse", cmd.OutOrStdout(), logger); err != nil {
		logger.Error("failed to write result", "error", err)
		return err
	}

	if !passed {
		logger.Error("analyse command failed the gate", "expression", expression, "violations", len(report.Gate.Failed))
		return errors.NewCommandError(report.Gate, errors.ErrGateFailed, errors.ExitCodeGateFailed)
	}

	logger.Info("analyse command completed successfully", "violations", report.Summary.Violations)
	return nil
}

// generateLongDescription generates the long description with the list of built-in regulations.
func generateLongDescription() string {
	return fmt.Sprintf(`Analyses the lines added by a unified diff against the compliance rules of the enabled
regulations and the security baseline, and writes a JSON report.

List of built-in regulations:
  %s`, strings.Join(rules.Regulations(), "\n  "))
}

// Initialize flags for the analyse command.
func init() {
	AnalyseCmd.Flags().StringSliceVarP(&analyseOptions.Regulations, "regulations", "r", nil, "Comma separated list of regulations to check. Defaults to the configured regulations; the security baseline is always checked.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.DiffPath, "diff", "d", "", "Path to a unified diff, '-' reads it from stdin.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.RepoPath, "repo", "", "Path to a local git repository to read the diff from.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Base, "base", "", "Base revision of the repository diff. Read from the CI environment when empty.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Head, "head", "", "Head revision of the repository diff. Read from the CI environment when empty.")
	AnalyseCmd.Flags().StringArrayVar(&analyseOptions.Paths, "path", nil, "Limit the repository diff to this file. Can be repeated.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.SeverityThreshold, "severity", "", "Minimum severity to report (info, low, medium, high, critical).")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Gate, "gate", "", "CEL expression evaluated against every violation; the command fails when it is true for any of them.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.BaselinePath, "baseline", "", "Path to a previous report. Violations already present in it are suppressed.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	AnalyseCmd.Flags().IntVarP(&analyseOptions.Threads, "threads", "j", 0, "Number of files analysed concurrently. Defaults to the configured value.")
	AnalyseCmd.Flags().BoolP("help", "h", false, "Show help for the analyse command.")
}
