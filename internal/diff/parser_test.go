package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineNumbers(t *testing.T) {
	patch := strings.Join([]string{
		"@@ -10,3 +20,4 @@",
		" context line",
		"-removed line",
		"+added one",
		"+added two",
	}, "\n")

	records := Parse(patch)
	require.Len(t, records, 4)

	context := records[0]
	assert.True(t, context.IsContext)
	assert.Equal(t, "context line", context.Content)
	assert.Equal(t, 10, context.OldLine())
	assert.Equal(t, 20, context.NewLine())

	deletion := records[1]
	assert.True(t, deletion.IsDeletion)
	assert.Equal(t, 11, deletion.OldLine())
	assert.Nil(t, deletion.NewLineNumber)

	assert.True(t, records[2].IsAddition)
	assert.Equal(t, 21, records[2].NewLine())
	assert.Nil(t, records[2].OldLineNumber)
	assert.True(t, records[3].IsAddition)
	assert.Equal(t, 22, records[3].NewLine())
	assert.Equal(t, "added two", records[3].Content)
}

func TestParseFlagsAreExclusive(t *testing.T) {
	patch := "@@ -1,2 +1,2 @@\n keep\n-old\n+new\n"
	for _, record := range Parse(patch) {
		set := 0
		for _, flag := range []bool{record.IsAddition, record.IsDeletion, record.IsContext} {
			if flag {
				set++
			}
		}
		assert.Equal(t, 1, set, "record %+v", record)
	}
}

func TestParseMultipleHunksResetCounters(t *testing.T) {
	patch := strings.Join([]string{
		"--- a/app.py",
		"+++ b/app.py",
		"@@ -1,2 +1,3 @@",
		" import os",
		"+import sys",
		" ",
		"@@ -40 +41,2 @@ def main():",
		"-    run()",
		"+    run(sys.argv)",
		"+    exit(0)",
		`\ No newline at end of file`,
	}, "\n")

	added := AddedLines(patch)
	require.Len(t, added, 3)
	assert.Equal(t, 2, added[0].NewLine())
	assert.Equal(t, 41, added[1].NewLine())
	assert.Equal(t, 42, added[2].NewLine())

	records := Parse(patch)
	require.Len(t, records, 6)
	assert.Equal(t, "", records[2].Content, "blank context line keeps an empty content")
	assert.Equal(t, 40, records[3].OldLine())
}

func TestParseHeaderLikeLinesInsideHunk(t *testing.T) {
	patch := strings.Join([]string{
		"--- a/counter.c",
		"+++ b/counter.c",
		"@@ -1,3 +1,4 @@",
		" int i = 0;",
		"+++i;",
		"--- old note",
		"+int email = 1;",
		" return i;",
	}, "\n")

	added := AddedLines(patch)
	require.Len(t, added, 2)
	assert.Equal(t, "++i;", added[0].Content)
	assert.Equal(t, 2, added[0].NewLine())
	assert.Equal(t, "int email = 1;", added[1].Content)
	assert.Equal(t, 3, added[1].NewLine())

	records := Parse(patch)
	require.Len(t, records, 5)
	assert.True(t, records[2].IsDeletion)
	assert.Equal(t, "-- old note", records[2].Content)
	assert.Equal(t, 2, records[2].OldLine())
	assert.Equal(t, 3, records[4].OldLine())
	assert.Equal(t, 4, records[4].NewLine())
}

func TestParseSkipsMalformedHunkHeader(t *testing.T) {
	patch := "@@ -1,2 +1,2 @@\n keep\n@@ broken header\n+token = 1\n"

	records := Parse(patch)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.NotContains(t, record.Content, "@@")
	}
	assert.Equal(t, 2, records[1].NewLine())
}

func TestParseWithoutHunkHeader(t *testing.T) {
	records := Parse("+first\n context\n+second")
	require.Len(t, records, 3)
	assert.Equal(t, 0, records[0].NewLine())
	assert.Equal(t, 1, records[1].NewLine())
	assert.Equal(t, 0, records[1].OldLine())
	assert.Equal(t, 2, records[2].NewLine())
}

func TestParseEmptyPatch(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, AddedLines(""))
}

func TestParseCRLF(t *testing.T) {
	records := Parse("@@ -1 +1 @@\r\n+token = 1\r\n")
	require.Len(t, records, 1)
	assert.Equal(t, "token = 1", records[0].Content)
	assert.Equal(t, 1, records[0].NewLine())
}

func TestSplitMultiFile(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/app/user.py b/app/user.py",
		"index 111..222 100644",
		"--- a/app/user.py",
		"+++ b/app/user.py",
		"@@ -1,2 +1,3 @@",
		" def get_user(id):",
		`+    print(f"user email: {user.email}")`,
		"     return user",
		"diff --git a/web/old.js b/web/old.js",
		"deleted file mode 100644",
		"index 333..000",
		"--- a/web/old.js",
		"+++ /dev/null",
		"@@ -1 +0,0 @@",
		"-console.log(email)",
		"diff --git a/web/new.ts b/web/new.ts",
		"new file mode 100644",
		"index 000..444",
		"--- /dev/null",
		"+++ b/web/new.ts",
		"@@ -0,0 +1,2 @@",
		"+const apiKey = \"abcd1234\";",
		"+export default apiKey;",
		"",
	}, "\n")

	files, err := SplitMultiFile(raw)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "app/user.py", files[0].Path)
	assert.Equal(t, "python", files[0].Language)
	added := AddedLines(files[0].Patch)
	require.Len(t, added, 1)
	assert.Equal(t, 2, added[0].NewLine())

	assert.Equal(t, "web/new.ts", files[1].Path)
	assert.Equal(t, "typescript", files[1].Language)
	added = AddedLines(files[1].Patch)
	require.Len(t, added, 2)
	assert.Equal(t, 1, added[0].NewLine())
	assert.Equal(t, `const apiKey = "abcd1234";`, added[0].Content)
}

func TestSplitMultiFileEmpty(t *testing.T) {
	files, err := SplitMultiFile("  \n")
	assert.NoError(t, err)
	assert.Empty(t, files)
}
