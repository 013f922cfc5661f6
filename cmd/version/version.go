package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/complyscan/internal/rules"
	"github.com/scan-io-git/complyscan/pkg/shared/config"
)

// Set at build time with -ldflags.
var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds version information for the application.
type Versions struct {
	Version       string   `json:"version"`
	GolangVersion string   `json:"golang_version"`
	BuildTime     string   `json:"build_time"`
	Regulations   []string `json:"regulations"`
	BuiltinRules  int      `json:"builtin_rules"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(cmd.OutOrStdout(), currentVersions())
		},
	}
}

func currentVersions() Versions {
	golangVersion := GolangVersion
	if golangVersion == "unknown" {
		golangVersion = runtime.Version()
	}
	return Versions{
		Version:       CoreVersion,
		GolangVersion: golangVersion,
		BuildTime:     BuildTime,
		Regulations:   rules.Regulations(),
		BuiltinRules:  len(rules.Registry()),
	}
}

// printVersionInfo prints the version information for the application.
func printVersionInfo(w io.Writer, versions Versions) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Version)
	fmt.Fprintf(w, "Built-in Rules: %d\n", versions.BuiltinRules)
	fmt.Fprintln(w, "Regulations:")
	for _, regulation := range versions.Regulations {
		fmt.Fprintf(w, "  %s\n", regulation)
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.BuildTime)
}
