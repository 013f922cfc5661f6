package baseline

import (
	"github.com/scan-io-git/complyscan/internal/analyzer"
)

// Filter splits current into violations absent from known and the ones that
// correlate to a known violation. Order is preserved.
func Filter(current, known []analyzer.Violation) (fresh, suppressed []analyzer.Violation) {
	if len(known) == 0 {
		return current, nil
	}

	currentEntries := make([]Entry, len(current))
	for i, v := range current {
		currentEntries[i] = EntryFromViolation(v)
	}
	knownEntries := make([]Entry, len(known))
	for i, v := range known {
		knownEntries[i] = EntryFromViolation(v)
	}

	c := NewCorrelator(currentEntries, knownEntries)
	for i, v := range current {
		if c.IsKnown(i) {
			suppressed = append(suppressed, v)
			continue
		}
		fresh = append(fresh, v)
	}
	return fresh, suppressed
}
