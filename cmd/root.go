package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/cmd/analyse"
	"github.com/scan-io-git/complyscan/cmd/check"
	"github.com/scan-io-git/complyscan/cmd/fix"
	"github.com/scan-io-git/complyscan/cmd/listrules"
	"github.com/scan-io-git/complyscan/cmd/version"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "complyscan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Complyscan checks code changes for regulatory compliance violations.",
		Long: `Complyscan matches the lines added by a code change against pattern rules for GDPR, CCPA,
HIPAA, PCI-DSS, SOX, the EU AI Act and a security baseline, and suggests template fixes.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(analyse.AnalyseCmd)
	rootCmd.AddCommand(check.CheckCmd)
	rootCmd.AddCommand(fix.FixCmd)
	rootCmd.AddCommand(listrules.RulesCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitCodeOK
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = config.DefaultConfigFile
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(errors.ExitCodeError)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCodeError)
	}

	analyse.Init(AppConfig)
	check.Init(AppConfig)
	fix.Init(AppConfig)
	listrules.Init(AppConfig)
	version.Init(AppConfig)
}
