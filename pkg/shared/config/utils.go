package config

import (
	"os"
	"reflect"
	"strings"
	"time"
)

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	fields := strings.Split(fieldPath, ".")
	val := reflect.ValueOf(config)

	for _, field := range fields {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}

		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	// Check if the field is a pointer to a bool and is not nil
	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		// Handle non-pointer bool directly
		return val.Bool()
	}

	return defaultValue
}

// SetThen provides a utility to select the first value if set, otherwise defaults.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// GetRegulations returns the regulations enabled in the configuration.
func GetRegulations(cfg *Config) []string {
	if cfg == nil {
		return nil
	}
	return cfg.Scanner.Regulations
}

// GetThreads returns the configured amount of concurrent analysis workers.
func GetThreads(cfg *Config) int {
	if cfg == nil {
		return DefaultThreads
	}
	return SetThen(cfg.Scanner.Threads, DefaultThreads)
}

// GetSeverityThreshold returns the minimum severity reported by the scanner.
func GetSeverityThreshold(cfg *Config) string {
	if cfg == nil {
		return DefaultSeverityThreshold
	}
	return SetThen(cfg.Scanner.SeverityThreshold, DefaultSeverityThreshold)
}

// GetCacheSize returns the amount of compiled rule sets kept in memory.
func GetCacheSize(cfg *Config) int {
	if cfg == nil {
		return DefaultCacheSize
	}
	return SetThen(cfg.Scanner.CacheSize, DefaultCacheSize)
}

// GetGateExpression returns the CEL expression used to fail a scan.
func GetGateExpression(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Gate.Expression
}

// GetGitTimeout returns the timeout of network operations of the git client.
func GetGitTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return DefaultGitTimeout
	}
	return SetThen(cfg.GitClient.Timeout, DefaultGitTimeout)
}

// GetGitToken returns the token for HTTP authentication, COMPLYSCAN_GIT_TOKEN takes precedence.
func GetGitToken(cfg *Config) string {
	if token := os.Getenv("COMPLYSCAN_GIT_TOKEN"); token != "" {
		return token
	}
	if cfg == nil {
		return ""
	}
	return cfg.GitClient.Token
}
