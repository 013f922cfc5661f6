package analyse

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/complyscan/internal/diff"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

func TestValidateAnalyseArgs(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "complyscan_example")
	assert.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tmpFile, err := os.CreateTemp(tmpDir, "complyscan_testfile.diff")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	tests := []struct {
		name     string
		options  RunOptionsAnalyse
		args     []string
		wantMode string
		wantErr  string
	}{
		{
			// valid: complyscan analyse --regulations GDPR --diff /path/to/changes.diff
			name: "Valid diff file",
			options: RunOptionsAnalyse{
				Regulations: []string{"GDPR"},
				DiffPath:    tmpFile.Name(),
			},
			wantMode: ModeDiff,
		},
		{
			// valid: complyscan analyse --diff -
			name: "Valid diff from stdin",
			options: RunOptionsAnalyse{
				DiffPath: "-",
			},
			wantMode: ModeDiff,
		},
		{
			// valid: complyscan analyse --repo /path/to/repo --base main --head HEAD --path app/user.py -j 4
			name: "Valid repository with revisions",
			options: RunOptionsAnalyse{
				RepoPath: tmpDir,
				Base:     "main",
				Head:     "HEAD",
				Paths:    []string{"app/user.py"},
				Threads:  4,
			},
			wantMode: ModeRepository,
		},
		{
			// valid: complyscan analyse --diff changes.diff --severity high --gate 'severity == "critical"'
			name: "Valid severity threshold and gate",
			options: RunOptionsAnalyse{
				DiffPath:          tmpFile.Name(),
				SeverityThreshold: "high",
				Gate:              `severity == "critical"`,
			},
			wantMode: ModeDiff,
		},
		{
			// invalid: complyscan analyse --regulations GDPR
			name: "Missing diff source",
			options: RunOptionsAnalyse{
				Regulations: []string{"GDPR"},
			},
			wantErr: "either 'diff' or 'repo' flag must be specified",
		},
		{
			// invalid: complyscan analyse --diff changes.diff --repo /path/to/repo
			name: "Both diff and repo",
			options: RunOptionsAnalyse{
				DiffPath: tmpFile.Name(),
				RepoPath: tmpDir,
			},
			wantErr: "you cannot use a 'diff' flag and a 'repo' flag at the same time",
		},
		{
			// invalid: complyscan analyse --diff changes.diff extra
			name: "Unexpected positional arguments",
			options: RunOptionsAnalyse{
				DiffPath: tmpFile.Name(),
			},
			args:    []string{"extra"},
			wantErr: "unexpected arguments: extra",
		},
		{
			// invalid: complyscan analyse --diff /does/not/exist.diff
			name: "Missing diff file",
			options: RunOptionsAnalyse{
				DiffPath: "/does/not/exist.diff",
			},
			wantErr: "the diff file does not exist: /does/not/exist.diff",
		},
		{
			// invalid: complyscan analyse --diff changes.diff --base main
			name: "Revision flags with diff file",
			options: RunOptionsAnalyse{
				DiffPath: tmpFile.Name(),
				Base:     "main",
			},
			wantErr: "the 'base', 'head' and 'path' flags can only be used with the 'repo' flag",
		},
		{
			// invalid: complyscan analyse --repo /path/to/repo --base main
			name: "Repository without head",
			options: RunOptionsAnalyse{
				RepoPath: tmpDir,
				Base:     "main",
			},
			wantErr: "the 'base' and 'head' flags must be specified with the 'repo' flag",
		},
		{
			// invalid: complyscan analyse --repo /does/not/exist --base main --head HEAD
			name: "Missing repository path",
			options: RunOptionsAnalyse{
				RepoPath: "/does/not/exist",
				Base:     "main",
				Head:     "HEAD",
			},
			wantErr: "the repository path does not exist: /does/not/exist",
		},
		{
			// valid: complyscan analyse --diff changes.diff --baseline previous.json
			name: "Valid baseline",
			options: RunOptionsAnalyse{
				DiffPath:     tmpFile.Name(),
				BaselinePath: tmpFile.Name(),
			},
			wantMode: ModeDiff,
		},
		{
			// invalid: complyscan analyse --diff changes.diff --baseline /does/not/exist.json
			name: "Missing baseline file",
			options: RunOptionsAnalyse{
				DiffPath:     tmpFile.Name(),
				BaselinePath: "/does/not/exist.json",
			},
			wantErr: "the baseline file does not exist: /does/not/exist.json",
		},
		{
			// invalid: complyscan analyse --regulations GDPR, --diff changes.diff
			name: "Empty regulation",
			options: RunOptionsAnalyse{
				Regulations: []string{"GDPR", " "},
				DiffPath:    tmpFile.Name(),
			},
			wantErr: "the 'regulations' flag cannot contain empty values",
		},
		{
			// invalid: complyscan analyse --diff changes.diff --severity urgent
			name: "Invalid severity",
			options: RunOptionsAnalyse{
				DiffPath:          tmpFile.Name(),
				SeverityThreshold: "urgent",
			},
			wantErr: "invalid 'severity' flag",
		},
		{
			// invalid: complyscan analyse --diff changes.diff -j 100
			name: "Too many threads",
			options: RunOptionsAnalyse{
				DiffPath: tmpFile.Name(),
				Threads:  100,
			},
			wantErr: "the 'threads' flag must be between 1 and 64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnalyseArgs(&tt.options, tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantMode, determineMode(&tt.options))
		})
	}
}

func TestReadDiff(t *testing.T) {
	patch := "diff --git a/a.py b/a.py\n@@ -0,0 +1 @@\n+email = x\n"

	got, err := readDiff("-", strings.NewReader(patch))
	require.NoError(t, err)
	assert.Equal(t, patch, got)

	path := t.TempDir() + "/changes.diff"
	require.NoError(t, os.WriteFile(path, []byte(patch), 0o644))
	got, err = readDiff(path, nil)
	require.NoError(t, err)
	assert.Equal(t, patch, got)

	_, err = readDiff(t.TempDir()+"/missing.diff", nil)
	assert.Error(t, err)
}

func TestReadDiffWithNonTextFile(t *testing.T) {
	mixed := strings.Join([]string{
		"diff --git a/legacy.py b/legacy.py",
		"index 111..222 100644",
		"--- a/legacy.py",
		"+++ b/legacy.py",
		"@@ -1 +1,2 @@",
		" name = 'caf\xe9'",
		"+owner = 'Ren\xe9'",
		"diff --git a/app/user.py b/app/user.py",
		"index 333..444 100644",
		"--- a/app/user.py",
		"+++ b/app/user.py",
		"@@ -1 +1,2 @@",
		" def register(user):",
		"+    send(user.email)",
		"",
	}, "\n")

	got, err := readDiff("-", strings.NewReader(mixed))
	require.NoError(t, err)
	assert.Equal(t, mixed, got)

	fileDiffs, err := diff.SplitMultiFile(got)
	require.NoError(t, err)
	require.Len(t, fileDiffs, 2)
	assert.False(t, files.IsText([]byte(fileDiffs[0].Patch)))
	assert.True(t, files.IsText([]byte(fileDiffs[1].Patch)))
}
