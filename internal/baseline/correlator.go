// Package baseline correlates violations of a run with the violations of an earlier
// run so that already known findings can be suppressed.
package baseline

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/scan-io-git/complyscan/internal/analyzer"
)

// Entry is the correlation key of a violation.
type Entry struct {
	ID          string
	Code        string
	FilePath    string
	LineStart   int
	LineEnd     int
	ColumnStart int
	ColumnEnd   int
	SnippetHash string
}

// Match groups a known entry with the current entries correlated to it.
type Match struct {
	Known   Entry
	Current []Entry
}

// EntryFromViolation builds the correlation key of v. The snippet hash covers the
// matched line content, falling back to the evidence.
func EntryFromViolation(v analyzer.Violation) Entry {
	snippet := v.MetadataString(analyzer.MetaLineContent)
	if snippet == "" {
		snippet = v.Evidence
	}
	return Entry{
		ID:          v.ID,
		Code:        v.Code,
		FilePath:    v.FilePath,
		LineStart:   v.LineStart,
		LineEnd:     v.LineEnd,
		ColumnStart: v.ColumnStart,
		ColumnEnd:   v.ColumnEnd,
		SnippetHash: SnippetHash(snippet),
	}
}

// SnippetHash returns the SHA256 hex digest of the trimmed snippet, or an empty
// string for blank input. Surrounding whitespace is ignored so re-indented lines
// still correlate.
func SnippetHash(snippet string) string {
	trimmed := strings.TrimSpace(snippet)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed))
	return fmt.Sprintf("%x", sum[:])
}

// Correlator computes many-to-many correlations between current and known entries.
// Use NewCorrelator and call Process, then inspect Matches, UnmatchedCurrent and
// UnmatchedKnown.
type Correlator struct {
	Current []Entry
	Known   []Entry

	knownToCurrent map[int][]int
	currentToKnown map[int][]int

	processed bool
}

// NewCorrelator creates a Correlator over the provided entries.
func NewCorrelator(current, known []Entry) *Correlator {
	return &Correlator{
		Current: current,
		Known:   known,
	}
}

// Process correlates every known entry with every current entry in four ordered
// stages. An entry matched in one stage is excluded from later stages, while several
// matches within the same stage are kept. Columns keep apart the matches of one
// rule on the same line.
//  1. code + file + line range + columns + snippet hash
//  2. code + file + columns + snippet hash
//  3. code + file + line range + columns
//  4. code + file + start line
//
// Process is idempotent.
func (c *Correlator) Process() {
	if c.processed {
		return
	}
	c.knownToCurrent = make(map[int][]int)
	c.currentToKnown = make(map[int][]int)

	matchedKnown := make(map[int]bool)
	matchedCurrent := make(map[int]bool)

	for stage := 1; stage <= 4; stage++ {
		matchedKnownThis := make(map[int]bool)
		matchedCurrentThis := make(map[int]bool)

		for ki, k := range c.Known {
			if matchedKnown[ki] {
				continue
			}
			for ci, n := range c.Current {
				if matchedCurrent[ci] {
					continue
				}
				if matchStage(k, n, stage) {
					c.knownToCurrent[ki] = append(c.knownToCurrent[ki], ci)
					c.currentToKnown[ci] = append(c.currentToKnown[ci], ki)
					matchedKnownThis[ki] = true
					matchedCurrentThis[ci] = true
				}
			}
		}

		for ki := range matchedKnownThis {
			matchedKnown[ki] = true
		}
		for ci := range matchedCurrentThis {
			matchedCurrent[ci] = true
		}
	}

	c.processed = true
}

// matchStage reports whether a and b match in the given stage. Code and file path
// must always agree; snippet stages need a non-empty hash on both sides.
func matchStage(a, b Entry, stage int) bool {
	if a.Code == "" || b.Code == "" || a.Code != b.Code {
		return false
	}
	if a.FilePath != b.FilePath {
		return false
	}

	hashes := a.SnippetHash != "" && a.SnippetHash == b.SnippetHash
	lines := a.LineStart == b.LineStart && a.LineEnd == b.LineEnd
	columns := a.ColumnStart == b.ColumnStart && a.ColumnEnd == b.ColumnEnd
	switch stage {
	case 1:
		return lines && columns && hashes
	case 2:
		return columns && hashes
	case 3:
		return lines && columns
	case 4:
		return a.LineStart == b.LineStart
	default:
		return false
	}
}

// IsKnown reports whether the current entry at index i correlates to a known entry.
func (c *Correlator) IsKnown(i int) bool {
	c.Process()
	return len(c.currentToKnown[i]) > 0
}

// UnmatchedCurrent returns the current entries without a known correlation.
func (c *Correlator) UnmatchedCurrent() []Entry {
	c.Process()

	var out []Entry
	for ci, n := range c.Current {
		if len(c.currentToKnown[ci]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// UnmatchedKnown returns the known entries without a current correlation.
func (c *Correlator) UnmatchedKnown() []Entry {
	c.Process()

	var out []Entry
	for ki, k := range c.Known {
		if len(c.knownToCurrent[ki]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Matches returns one Match per known entry with at least one correlated current
// entry, in known order.
func (c *Correlator) Matches() []Match {
	c.Process()

	var out []Match
	for ki, k := range c.Known {
		idxs := c.knownToCurrent[ki]
		if len(idxs) == 0 {
			continue
		}
		m := Match{Known: k, Current: make([]Entry, 0, len(idxs))}
		for _, ci := range idxs {
			m.Current = append(m.Current, c.Current[ci])
		}
		out = append(out, m)
	}
	return out
}
