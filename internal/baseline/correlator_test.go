package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/complyscan/internal/analyzer"
)

func TestCorrelatorSnippetHashMatch(t *testing.T) {
	known := []Entry{{Code: "GDPR-PII_LOGGIN", FilePath: "app.py", LineStart: 3, LineEnd: 3, SnippetHash: "h1"}}
	current := []Entry{{Code: "GDPR-PII_LOGGIN", FilePath: "app.py", LineStart: 9, LineEnd: 9, SnippetHash: "h1"}}

	c := NewCorrelator(current, known)
	c.Process()

	matches := c.Matches()
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Current, 1)
	assert.Empty(t, c.UnmatchedCurrent())
	assert.Empty(t, c.UnmatchedKnown())
}

func TestCorrelatorLineMatch(t *testing.T) {
	known := []Entry{{Code: "SEC-WEAK_CRYPT", FilePath: "f.go", LineStart: 10, LineEnd: 10}}
	current := []Entry{{Code: "SEC-WEAK_CRYPT", FilePath: "f.go", LineStart: 10, LineEnd: 10}}

	c := NewCorrelator(current, known)
	assert.Len(t, c.Matches(), 1)
	assert.True(t, c.IsKnown(0))
}

func TestCorrelatorEmptyHashesDoNotMatch(t *testing.T) {
	known := []Entry{{Code: "SEC-WEAK_CRYPT", FilePath: "f.go", LineStart: 1, LineEnd: 1}}
	current := []Entry{{Code: "SEC-WEAK_CRYPT", FilePath: "f.go", LineStart: 7, LineEnd: 7}}

	c := NewCorrelator(current, known)
	assert.Empty(t, c.Matches())
	assert.Len(t, c.UnmatchedCurrent(), 1)
	assert.Len(t, c.UnmatchedKnown(), 1)
}

func TestCorrelatorDifferentCodeOrFile(t *testing.T) {
	known := []Entry{
		{Code: "SEC-WEAK_CRYPT", FilePath: "a.go", LineStart: 1, LineEnd: 1, SnippetHash: "h"},
		{Code: "SEC-EVAL_USAGE", FilePath: "b.go", LineStart: 1, LineEnd: 1, SnippetHash: "h"},
	}
	current := []Entry{{Code: "SEC-WEAK_CRYPT", FilePath: "b.go", LineStart: 1, LineEnd: 1, SnippetHash: "h"}}

	c := NewCorrelator(current, known)
	assert.Empty(t, c.Matches())
	assert.False(t, c.IsKnown(0))
}

func TestCorrelatorEarlierStageWins(t *testing.T) {
	// The exact entry claims the known one in stage 1, so the shifted copy is
	// not matched by the hash in stage 2.
	known := []Entry{{Code: "C", FilePath: "f", LineStart: 5, LineEnd: 5, SnippetHash: "h"}}
	current := []Entry{
		{ID: "shifted", Code: "C", FilePath: "f", LineStart: 8, LineEnd: 8, SnippetHash: "h"},
		{ID: "exact", Code: "C", FilePath: "f", LineStart: 5, LineEnd: 5, SnippetHash: "h"},
	}

	c := NewCorrelator(current, known)
	matches := c.Matches()
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Current, 1)
	assert.Equal(t, "exact", matches[0].Current[0].ID)

	unmatched := c.UnmatchedCurrent()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "shifted", unmatched[0].ID)
}

func TestCorrelatorSameStageManyToMany(t *testing.T) {
	known := []Entry{{Code: "C", FilePath: "f", LineStart: 2, LineEnd: 2}}
	current := []Entry{
		{Code: "C", FilePath: "f", LineStart: 2, LineEnd: 2},
		{Code: "C", FilePath: "f", LineStart: 2, LineEnd: 2},
	}

	c := NewCorrelator(current, known)
	matches := c.Matches()
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Current, 2)
}

func TestCorrelatorColumnsSeparateMatchesOnOneLine(t *testing.T) {
	known := []Entry{{ID: "k", Code: "GDPR-PERSONAL_D", FilePath: "a.py", LineStart: 2, LineEnd: 2, ColumnStart: 4, ColumnEnd: 9, SnippetHash: "h"}}
	current := []Entry{
		{ID: "first", Code: "GDPR-PERSONAL_D", FilePath: "a.py", LineStart: 2, LineEnd: 2, ColumnStart: 4, ColumnEnd: 9, SnippetHash: "h"},
		{ID: "second", Code: "GDPR-PERSONAL_D", FilePath: "a.py", LineStart: 2, LineEnd: 2, ColumnStart: 20, ColumnEnd: 25, SnippetHash: "h"},
	}

	c := NewCorrelator(current, known)
	assert.True(t, c.IsKnown(0))
	assert.False(t, c.IsKnown(1))

	unmatched := c.UnmatchedCurrent()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "second", unmatched[0].ID)

	// moved to another line: the hash and columns still tell the matches apart
	moved := []Entry{current[1], current[0]}
	moved[0].LineStart, moved[0].LineEnd = 7, 7
	moved[1].LineStart, moved[1].LineEnd = 7, 7

	c = NewCorrelator(moved, known)
	assert.False(t, c.IsKnown(0))
	assert.True(t, c.IsKnown(1))
}

func TestSnippetHash(t *testing.T) {
	assert.Empty(t, SnippetHash("   "))
	assert.Equal(t, SnippetHash("logger.info(email)"), SnippetHash("    logger.info(email)\t"))
	assert.NotEqual(t, SnippetHash("a"), SnippetHash("b"))
	assert.Len(t, SnippetHash("a"), 64)
}

func TestFilter(t *testing.T) {
	violation := func(id, code string, line int, content string) analyzer.Violation {
		return analyzer.Violation{
			ID:        id,
			Code:      code,
			FilePath:  "app/user.py",
			LineStart: line,
			LineEnd:   line,
			Metadata:  map[string]interface{}{analyzer.MetaLineContent: content},
		}
	}

	known := []analyzer.Violation{
		violation("k1", "GDPR-PII_LOGGIN", 4, "logger.info(user.email)"),
	}
	current := []analyzer.Violation{
		violation("c1", "GDPR-PII_LOGGIN", 12, "  logger.info(user.email)"),
		violation("c2", "SEC-WEAK_CRYPT", 13, "hashlib.md5(data)"),
	}

	fresh, suppressed := Filter(current, known)
	require.Len(t, fresh, 1)
	require.Len(t, suppressed, 1)
	assert.Equal(t, "c2", fresh[0].ID)
	assert.Equal(t, "c1", suppressed[0].ID)

	fresh, suppressed = Filter(current, nil)
	assert.Equal(t, current, fresh)
	assert.Empty(t, suppressed)
}
