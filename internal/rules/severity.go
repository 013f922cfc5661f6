package rules

import (
	"fmt"
	"strings"
)

// Severity is the impact level attached to a rule and to every violation it produces.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
func ParseSeverity(value string) (Severity, error) {
	severity := Severity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := severityRanks[severity]; !ok {
		return "", fmt.Errorf("unknown severity %q", value)
	}
	return severity, nil
}

// Rank orders severities from info (0) to critical (4). Unknown values rank below info.
func (s Severity) Rank() int {
	if rank, ok := severityRanks[s]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether s is as severe as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

func (s Severity) String() string {
	return string(s)
}
