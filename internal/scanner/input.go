package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/scan-io-git/complyscan/internal/analyzer"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// violationsInput matches both analyse reports and check results.
type violationsInput struct {
	Violations []analyzer.Violation `json:"violations"`
	Documents  []struct {
		Diagnostics []analyzer.Violation `json:"diagnostics"`
	} `json:"documents"`
}

// ReadViolations reads violations from a JSON file written by a previous run.
func ReadViolations(path string) ([]analyzer.Violation, error) {
	content, err := files.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeViolations([]byte(content))
}

// DecodeViolations accepts a JSON array of violations, an analyse report or a check result.
func DecodeViolations(data []byte) ([]analyzer.Violation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	if trimmed[0] == '[' {
		var violations []analyzer.Violation
		if err := json.Unmarshal(trimmed, &violations); err != nil {
			return nil, fmt.Errorf("failed to decode violations: %w", err)
		}
		return violations, nil
	}

	var input violationsInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	violations := input.Violations
	for _, document := range input.Documents {
		violations = append(violations, document.Diagnostics...)
	}
	return violations, nil
}
