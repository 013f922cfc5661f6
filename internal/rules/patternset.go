package rules

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-hclog"
)

// CompiledRule is a rule together with its compiled expression.
type CompiledRule struct {
	Rule
	Regexp *regexp.Regexp
}

// PatternSet is an immutable snapshot of compiled rules. It is safe for concurrent
// use; modifications return a new snapshot and leave the receiver untouched.
type PatternSet struct {
	rules []*CompiledRule
	index map[string]int
}

// Compile compiles a single rule pattern, case-insensitive and multiline.
func Compile(rule Rule) (*CompiledRule, error) {
	if rule.Name == "" {
		return nil, fmt.Errorf("rule name is empty")
	}
	re, err := regexp.Compile("(?im)" + rule.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %q has an invalid pattern: %w", rule.Name, err)
	}
	return &CompiledRule{Rule: rule, Regexp: re}, nil
}

// CompileEnabled builds a PatternSet from the built-in registry merged with custom rules.
// Custom rules replace built-in rules of the same name in place; new names are appended.
// A rule is included if it is a baseline rule or its regulation is in enabled.
// Rules whose pattern does not compile are skipped with a warning.
func CompileEnabled(enabled []string, custom []Rule, logger hclog.Logger) *PatternSet {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	allowed := make(map[string]struct{}, len(enabled))
	for _, regulation := range enabled {
		allowed[regulation] = struct{}{}
	}

	set := &PatternSet{index: make(map[string]int)}
	for _, rule := range merge(registry, custom) {
		if !rule.IsBaseline() {
			if _, ok := allowed[rule.Regulation]; !ok {
				continue
			}
		}
		compiled, err := Compile(rule)
		if err != nil {
			logger.Warn("skipping rule", "rule", rule.Name, "error", err)
			continue
		}
		set.index[rule.Name] = len(set.rules)
		set.rules = append(set.rules, compiled)
	}

	logger.Debug("rules compiled", "total", len(set.rules), "regulations", enabled)
	return set
}

// merge overlays custom rules onto base while keeping registration order.
func merge(base, custom []Rule) []Rule {
	merged := make([]Rule, 0, len(base)+len(custom))
	position := make(map[string]int, len(base)+len(custom))
	for _, rule := range base {
		position[rule.Name] = len(merged)
		merged = append(merged, rule)
	}
	for _, rule := range custom {
		if i, ok := position[rule.Name]; ok {
			merged[i] = rule
			continue
		}
		position[rule.Name] = len(merged)
		merged = append(merged, rule)
	}
	return merged
}

// WithRule returns a new snapshot containing rule. Only the new rule is compiled.
// An existing rule with the same name is replaced in place.
func (s *PatternSet) WithRule(rule Rule) (*PatternSet, error) {
	compiled, err := Compile(rule)
	if err != nil {
		return nil, err
	}

	next := s.clone(len(s.rules) + 1)
	if i, ok := next.index[rule.Name]; ok {
		next.rules[i] = compiled
		return next, nil
	}
	next.index[rule.Name] = len(next.rules)
	next.rules = append(next.rules, compiled)
	return next, nil
}

// WithoutRule returns a new snapshot without the named rule. The boolean reports
// whether the rule was present.
func (s *PatternSet) WithoutRule(name string) (*PatternSet, bool) {
	i, ok := s.index[name]
	if !ok {
		return s, false
	}

	next := &PatternSet{
		rules: make([]*CompiledRule, 0, len(s.rules)-1),
		index: make(map[string]int, len(s.rules)-1),
	}
	next.rules = append(next.rules, s.rules[:i]...)
	next.rules = append(next.rules, s.rules[i+1:]...)
	for j, rule := range next.rules {
		next.index[rule.Name] = j
	}
	return next, true
}

// Rules returns the compiled rules in registration order.
func (s *PatternSet) Rules() []*CompiledRule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Len returns the amount of compiled rules.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Lookup returns the compiled rule with the given name.
func (s *PatternSet) Lookup(name string) (*CompiledRule, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.rules[i], true
}

func (s *PatternSet) clone(capacity int) *PatternSet {
	next := &PatternSet{
		rules: make([]*CompiledRule, len(s.rules), capacity),
		index: make(map[string]int, capacity),
	}
	copy(next.rules, s.rules)
	for name, i := range s.index {
		next.index[name] = i
	}
	return next
}
