package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineRecord is one source line of a unified diff hunk.
// Exactly one of IsAddition, IsDeletion and IsContext is set.
type LineRecord struct {
	Content       string `json:"content"`
	OldLineNumber *int   `json:"old_line_number,omitempty"`
	NewLineNumber *int   `json:"new_line_number,omitempty"`
	IsAddition    bool   `json:"is_addition"`
	IsDeletion    bool   `json:"is_deletion"`
	IsContext     bool   `json:"is_context"`
}

// NewLine returns the new-file line number or 0 when the line has none.
func (l LineRecord) NewLine() int {
	if l.NewLineNumber == nil {
		return 0
	}
	return *l.NewLineNumber
}

// OldLine returns the old-file line number or 0 when the line has none.
func (l LineRecord) OldLine() int {
	if l.OldLineNumber == nil {
		return 0
	}
	return *l.OldLineNumber
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// Parse converts unified diff text into line records.
//
// Counters start at zero and are reset by every hunk header, so a patch without a
// header yields zero-based numbers instead of an error. File headers ("+++ ", "--- ")
// before the first hunk, malformed "@@" lines and "\ No newline at end of file"
// markers are not emitted. Inside a hunk every line is classified by its first byte,
// so an added "++i;" is still an addition.
func Parse(patch string) []LineRecord {
	if patch == "" {
		return nil
	}

	lines := strings.Split(patch, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	records := make([]LineRecord, 0, len(lines))
	oldLine, newLine := 0, 0
	inHunk := false

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "@@") {
			if m := hunkHeader.FindStringSubmatch(line); m != nil {
				oldLine = atoi(m[1])
				newLine = atoi(m[2])
				inHunk = true
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, `\`):
			continue
		case !inHunk && (strings.HasPrefix(line, "+++ ") || strings.HasPrefix(line, "--- ")):
			continue
		case strings.HasPrefix(line, "+"):
			records = append(records, LineRecord{
				Content:       line[1:],
				NewLineNumber: intPtr(newLine),
				IsAddition:    true,
			})
			newLine++
		case strings.HasPrefix(line, "-"):
			records = append(records, LineRecord{
				Content:       line[1:],
				OldLineNumber: intPtr(oldLine),
				IsDeletion:    true,
			})
			oldLine++
		default:
			records = append(records, LineRecord{
				Content:       strings.TrimPrefix(line, " "),
				OldLineNumber: intPtr(oldLine),
				NewLineNumber: intPtr(newLine),
				IsContext:     true,
			})
			oldLine++
			newLine++
		}
	}

	return records
}

// AddedLines returns only the addition records of patch.
func AddedLines(patch string) []LineRecord {
	var added []LineRecord
	for _, record := range Parse(patch) {
		if record.IsAddition {
			added = append(added, record)
		}
	}
	return added
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func intPtr(v int) *int {
	return &v
}
