package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

const maxThreads = 64

var severityNames = []string{"info", "low", "medium", "high", "critical"}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateScannerConfig(&cfg.Scanner); err != nil {
		return fmt.Errorf("YAML global config: scanner directive is invalid: %w", err)
	}
	if err := ValidateGitConfig(&cfg.GitClient); err != nil {
		return fmt.Errorf("YAML global config: git_client directive is invalid: %w", err)
	}
	return nil
}

// ValidateScannerConfig checks if the scanner configurations have valid values.
func ValidateScannerConfig(scannerConfig *Scanner) error {
	if scannerConfig == nil {
		return fmt.Errorf("scanner configuration is nil")
	}

	if scannerConfig.Threads < 0 || scannerConfig.Threads > maxThreads {
		return fmt.Errorf("threads must be between 1 and %d: %d", maxThreads, scannerConfig.Threads)
	}
	if scannerConfig.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative: %d", scannerConfig.CacheSize)
	}
	if scannerConfig.SeverityThreshold != "" {
		if err := validateSeverity(scannerConfig.SeverityThreshold); err != nil {
			return err
		}
	}
	for _, regulation := range scannerConfig.Regulations {
		if strings.TrimSpace(regulation) == "" {
			return fmt.Errorf("regulations cannot contain empty values")
		}
	}

	if scannerConfig.RulesFile != "" {
		expanded, err := files.ExpandPath(scannerConfig.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to expand rules_file path %q: %w", scannerConfig.RulesFile, err)
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("rules_file is not readable: %w", err)
		}
		scannerConfig.RulesFile = expanded
	}
	return nil
}

// validateSeverity checks that the given severity name is known.
func validateSeverity(severity string) error {
	lower := strings.ToLower(severity)
	for _, name := range severityNames {
		if lower == name {
			return nil
		}
	}
	return fmt.Errorf("unknown severity_threshold %q, expected one of %s", severity, strings.Join(severityNames, ", "))
}

// ValidateGitConfig checks if the git client configurations have valid values.
func ValidateGitConfig(gitConfig *GitClient) error {
	if gitConfig == nil {
		return fmt.Errorf("git configuration is nil")
	}

	if err := validateDuration(gitConfig.Timeout, "timeout", 1*time.Hour); err != nil {
		return err
	}

	switch gitConfig.AuthType {
	case "", "ssh-agent":
	case "ssh-key":
		if gitConfig.SSHKey == "" {
			return fmt.Errorf("ssh_key is required for auth_type %q", gitConfig.AuthType)
		}
	case "http":
		if gitConfig.Username == "" {
			return fmt.Errorf("username is required for auth_type %q", gitConfig.AuthType)
		}
	default:
		return fmt.Errorf("unknown auth_type %q, expected one of ssh-key, ssh-agent, http", gitConfig.AuthType)
	}
	return nil
}

// validateDuration checks if the given duration is within the allowed range.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}
