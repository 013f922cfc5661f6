package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultConfigFile        = "config.yml"
	DefaultThreads           = 1
	DefaultSeverityThreshold = "info"
	DefaultCacheSize         = 16
	DefaultGitTimeout        = 10 * time.Minute
)

// Config is the global YAML configuration of the scanner.
type Config struct {
	Logger    Logger    `yaml:"logger"`
	Scanner   Scanner   `yaml:"scanner"`
	GitClient GitClient `yaml:"git_client"`
	Gate      Gate      `yaml:"gate"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// Scanner holds the settings of the compliance pattern scanner.
type Scanner struct {
	Regulations       []string                 `yaml:"regulations"`
	SeverityThreshold string                   `yaml:"severity_threshold"`
	Threads           int                      `yaml:"threads"`
	RulesFile         string                   `yaml:"rules_file"`
	CustomRules       []map[string]interface{} `yaml:"custom_rules"`
	CacheSize         int                      `yaml:"cache_size"`
}

// GitClient holds the settings used when diffs are read from a local repository.
// Authentication is only needed when a commit is missing locally and has to be fetched.
type GitClient struct {
	Timeout        time.Duration `yaml:"timeout"`
	FetchMissing   *bool         `yaml:"fetch_missing"`
	InsecureTLS    *bool         `yaml:"insecure_tls"`
	AuthType       string        `yaml:"auth_type"`
	SSHKey         string        `yaml:"ssh_key"`
	SSHKeyPassword string        `yaml:"ssh_key_password"`
	Username       string        `yaml:"username"`
	Token          string        `yaml:"token"`
}

type Gate struct {
	Expression string `yaml:"expression"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// LoadConfig reads the configuration from configPath.
// A missing file is not an error, the default configuration is returned instead.
func LoadConfig(configPath string) (*Config, error) {
	if envPath := os.Getenv("COMPLYSCAN_CONFIG"); envPath != "" {
		configPath = envPath
	}

	config := &Config{}
	if err := LoadYAML(configPath, config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}
