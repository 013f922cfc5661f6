package listrules

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/internal/analyzer"
	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/internal/scanner"
	"github.com/scan-io-git/complyscan/pkg/shared"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/logger"
)

// RunOptionsRules holds the arguments for the rules command.
type RunOptionsRules struct {
	Regulations []string
	OutputPath  string
}

// RuleInfo describes one active compiled rule.
type RuleInfo struct {
	Name       string         `json:"name"`
	Code       string         `json:"code"`
	Pattern    string         `json:"pattern"`
	Message    string         `json:"message"`
	Severity   rules.Severity `json:"severity"`
	Regulation string         `json:"regulation,omitempty"`
	Article    string         `json:"article,omitempty"`
	Category   string         `json:"category,omitempty"`
	Baseline   bool           `json:"baseline"`
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	rulesOptions      RunOptionsRules
	exampleRulesUsage = `  # Listing the rules enabled by the configuration
  complyscan rules

  # Listing the rules active for GDPR and PCI-DSS
  complyscan rules --regulations GDPR,PCI-DSS`
)

// RulesCmd represents the rules command.
var RulesCmd = &cobra.Command{
	Use:                   "rules [--regulations LIST] [--output PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRulesUsage,
	Short:                 "Lists the active compliance rules",
	RunE:                  runRulesCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	RulesCmd.Long = generateLongDescription()
}

// runRulesCommand executes the rules command.
func runRulesCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-rules")

	if len(args) > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
		logger.Error("invalid rules arguments", "error", err)
		return err
	}

	s, err := scanner.New(AppConfig, scanner.Options{Regulations: rulesOptions.Regulations}, logger)
	if err != nil {
		logger.Error("failed to initialise scanner", "error", err)
		return err
	}

	infos := describeRules(s.Rules())
	if err := shared.WriteResult(infos, rulesOptions.OutputPath, "rules", cmd.OutOrStdout(), logger); err != nil {
		logger.Error("failed to write result", "error", err)
		return err
	}
	return nil
}

// describeRules converts compiled rules into their listing form, in registration order.
func describeRules(set *rules.PatternSet) []RuleInfo {
	infos := make([]RuleInfo, 0, set.Len())
	for _, rule := range set.Rules() {
		infos = append(infos, RuleInfo{
			Name:       rule.Name,
			Code:       analyzer.BuildCode(rule.Regulation, rule.Name),
			Pattern:    rule.Pattern,
			Message:    rule.Message,
			Severity:   rule.Severity,
			Regulation: rule.Regulation,
			Article:    rule.Article,
			Category:   rule.Category,
			Baseline:   rule.IsBaseline(),
		})
	}
	return infos
}

// generateLongDescription generates the long description with the list of built-in regulations.
func generateLongDescription() string {
	return fmt.Sprintf(`Lists the compiled rules active for the given regulations, including the security
baseline and custom rules from the configuration.

List of built-in regulations:
  %s`, strings.Join(rules.Regulations(), "\n  "))
}

// Initialize flags for the rules command.
func init() {
	RulesCmd.Flags().StringSliceVarP(&rulesOptions.Regulations, "regulations", "r", nil, "Comma separated list of regulations. Defaults to the configured regulations.")
	RulesCmd.Flags().StringVarP(&rulesOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Defaults to stdout.")
	RulesCmd.Flags().BoolP("help", "h", false, "Show help for the rules command.")
}
