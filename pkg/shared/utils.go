package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// HasFlags reports whether any flag of the set was explicitly changed.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}

// GenerateNameTemplate returns a timestamped file name for command results.
func GenerateNameTemplate(command string) string {
	startTime := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	return fmt.Sprintf("complyscan-%s-%s.json", command, startTime)
}

// WriteResult writes data as indented JSON. An empty outputPath writes to stdout,
// a directory or a path without extension receives a generated file name.
func WriteResult(data interface{}, outputPath, command string, stdout io.Writer, logger hclog.Logger) error {
	resultJson, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s result: %w", command, err)
	}

	if outputPath == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		_, err := fmt.Fprintln(stdout, string(resultJson))
		return err
	}

	outputFile, outputFolder, err := files.DetermineFileFullPath(outputPath, GenerateNameTemplate(command))
	if err != nil {
		return err
	}
	if err := files.CreateFolderIfNotExists(outputFolder); err != nil {
		return fmt.Errorf("failed to create output folder %q: %w", outputFolder, err)
	}
	if err := files.WriteJsonFile(outputFile, resultJson); err != nil {
		return err
	}

	logger.Info("results saved to file", "path", filepath.Clean(outputFile))
	return nil
}
