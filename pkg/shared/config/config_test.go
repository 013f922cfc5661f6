package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `logger:
  level: DEBUG
  json_format: true
scanner:
  regulations: [GDPR, HIPAA]
  severity_threshold: low
  threads: 4
  custom_rules:
    - {name: internal_id, pattern: 'employee_id', severity: medium, regulation: GDPR}
  cache_size: 8
git_client:
  timeout: 5m
  fetch_missing: false
  auth_type: http
  username: ci-bot
gate:
  expression: 'severity == "critical"'
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("COMPLYSCAN_CONFIG", "")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg.Logger, "JSONFormat", false))
	assert.Equal(t, []string{"GDPR", "HIPAA"}, GetRegulations(cfg))
	assert.Equal(t, "low", GetSeverityThreshold(cfg))
	assert.Equal(t, 4, GetThreads(cfg))
	assert.Equal(t, 8, GetCacheSize(cfg))
	require.Len(t, cfg.Scanner.CustomRules, 1)
	assert.Equal(t, "internal_id", cfg.Scanner.CustomRules[0]["name"])
	assert.Equal(t, 5*time.Minute, GetGitTimeout(cfg))
	assert.False(t, GetBoolValue(cfg.GitClient, "FetchMissing", true))
	assert.Equal(t, `severity == "critical"`, GetGateExpression(cfg))
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("COMPLYSCAN_CONFIG", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Nil(t, GetRegulations(cfg))
	assert.Equal(t, DefaultThreads, GetThreads(cfg))
	assert.Equal(t, DefaultSeverityThreshold, GetSeverityThreshold(cfg))
	assert.Equal(t, DefaultCacheSize, GetCacheSize(cfg))
	assert.Equal(t, DefaultGitTimeout, GetGitTimeout(cfg))
	assert.Empty(t, GetGateExpression(cfg))

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, DefaultThreads, GetThreads(nil))
	assert.Empty(t, GetGateExpression(nil))
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "scanner:\n  threads: 7\n")
	t.Setenv("COMPLYSCAN_CONFIG", path)

	cfg, err := LoadConfig("ignored.yml")
	require.NoError(t, err)
	assert.Equal(t, 7, GetThreads(cfg))
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("COMPLYSCAN_CONFIG", "")

	_, err := LoadConfig(writeConfig(t, "scanner: [not, a, map"))
	assert.Error(t, err)

	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "is a directory, not a file")
}

func TestValidateScannerConfig(t *testing.T) {
	tests := []struct {
		name    string
		scanner Scanner
		wantErr string
	}{
		{name: "Empty", scanner: Scanner{}},
		{name: "Valid", scanner: Scanner{Threads: 64, SeverityThreshold: "HIGH", Regulations: []string{"PCI-DSS"}}},
		{name: "Too many threads", scanner: Scanner{Threads: 65}, wantErr: "threads must be between 1 and 64: 65"},
		{name: "Negative cache", scanner: Scanner{CacheSize: -1}, wantErr: "cache_size cannot be negative: -1"},
		{name: "Unknown severity", scanner: Scanner{SeverityThreshold: "urgent"}, wantErr: `unknown severity_threshold "urgent"`},
		{name: "Empty regulation", scanner: Scanner{Regulations: []string{""}}, wantErr: "regulations cannot contain empty values"},
		{name: "Missing rules file", scanner: Scanner{RulesFile: "/does/not/exist.yml"}, wantErr: "rules_file is not readable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScannerConfig(&tt.scanner)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateGitConfig(t *testing.T) {
	tests := []struct {
		name    string
		git     GitClient
		wantErr string
	}{
		{name: "Empty", git: GitClient{}},
		{name: "SSH agent", git: GitClient{AuthType: "ssh-agent"}},
		{name: "SSH key", git: GitClient{AuthType: "ssh-key", SSHKey: "~/.ssh/id_ed25519"}},
		{name: "SSH key missing", git: GitClient{AuthType: "ssh-key"}, wantErr: `ssh_key is required for auth_type "ssh-key"`},
		{name: "HTTP without username", git: GitClient{AuthType: "http"}, wantErr: `username is required for auth_type "http"`},
		{name: "Unknown auth", git: GitClient{AuthType: "kerberos"}, wantErr: `unknown auth_type "kerberos"`},
		{name: "Negative timeout", git: GitClient{Timeout: -time.Second}, wantErr: "cannot be negative"},
		{name: "Long timeout", git: GitClient{Timeout: 2 * time.Hour}, wantErr: "exceeds maximum of 1h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGitConfig(&tt.git)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetGitToken(t *testing.T) {
	cfg := &Config{GitClient: GitClient{Token: "from-config"}}

	t.Setenv("COMPLYSCAN_GIT_TOKEN", "")
	assert.Equal(t, "from-config", GetGitToken(cfg))
	assert.Empty(t, GetGitToken(nil))

	t.Setenv("COMPLYSCAN_GIT_TOKEN", "from-env")
	assert.Equal(t, "from-env", GetGitToken(cfg))
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 3, SetThen(0, 3))
	assert.Equal(t, 5, SetThen(5, 3))
	assert.Equal(t, "b", SetThen("", "b"))
	assert.Equal(t, []string{"x"}, SetThen([]string(nil), []string{"x"}))
}
