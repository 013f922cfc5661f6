package rules

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/scan-io-git/complyscan/pkg/shared/config"
)

// ruleFile is the layout of a YAML file with custom rules.
type ruleFile struct {
	Rules []map[string]interface{} `yaml:"rules"`
}

// LoadRuleFile reads custom rules from a YAML file.
func LoadRuleFile(path string) ([]Rule, error) {
	var file ruleFile
	if err := config.LoadYAML(path, &file); err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	rules, err := DecodeRules(file.Rules)
	if err != nil {
		return nil, fmt.Errorf("rules file %q: %w", path, err)
	}
	return rules, nil
}

// DecodeRules converts loosely typed rule definitions, as found in YAML configuration,
// into rules. The pattern itself is not compiled here.
func DecodeRules(raw []map[string]interface{}) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for i, item := range raw {
		var rule Rule
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       severityHook,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &rule,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("rule #%d: %w", i+1, err)
		}
		if strings.TrimSpace(rule.Name) == "" {
			return nil, fmt.Errorf("rule #%d: name is required", i+1)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %q: pattern is required", rule.Name)
		}
		if rule.Severity == "" {
			rule.Severity = SeverityMedium
		}
		if rule.Category == "" {
			rule.Category = "custom"
		}
		if rule.Message == "" {
			rule.Message = fmt.Sprintf("Custom rule %s matched", rule.Name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadCustomRules collects custom rules from the rules file and inline definitions of cfg.
// Inline definitions override rules file entries with the same name.
func LoadCustomRules(cfg *config.Config) ([]Rule, error) {
	if cfg == nil {
		return nil, nil
	}

	var custom []Rule
	if cfg.Scanner.RulesFile != "" {
		fromFile, err := LoadRuleFile(cfg.Scanner.RulesFile)
		if err != nil {
			return nil, err
		}
		custom = append(custom, fromFile...)
	}

	inline, err := DecodeRules(cfg.Scanner.CustomRules)
	if err != nil {
		return nil, fmt.Errorf("custom_rules: %w", err)
	}
	return merge(custom, inline), nil
}

func severityHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(Severity("")) || from.Kind() != reflect.String {
		return data, nil
	}
	value := reflect.ValueOf(data).String()
	if value == "" {
		return Severity(""), nil
	}
	return ParseSeverity(value)
}
