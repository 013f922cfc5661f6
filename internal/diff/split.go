package diff

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/scan-io-git/complyscan/internal/language"
)

const devNull = "/dev/null"

// FileDiff is the unit of diff-mode analysis: one file path with its hunks.
type FileDiff struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Patch    string `json:"patch"`
}

// NewFileDiff builds a FileDiff and detects the language from the path.
func NewFileDiff(path, patch string) FileDiff {
	return FileDiff{
		Path:     path,
		Language: language.Detect(path),
		Patch:    patch,
	}
}

// SplitMultiFile splits the output of `git diff` into per-file diffs holding only
// their hunks. Deleted files and files without hunks (mode changes, binaries) are skipped.
func SplitMultiFile(raw string) ([]FileDiff, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parsed, err := godiff.ParseMultiFileDiff([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse multi-file diff: %w", err)
	}

	files := make([]FileDiff, 0, len(parsed))
	for _, fd := range parsed {
		if fd == nil || fd.NewName == devNull || len(fd.Hunks) == 0 {
			continue
		}

		hunks, err := godiff.PrintHunks(fd.Hunks)
		if err != nil {
			return nil, fmt.Errorf("failed to print hunks of %q: %w", fd.NewName, err)
		}
		files = append(files, NewFileDiff(cleanPath(fd.NewName), string(hunks)))
	}
	return files, nil
}

// cleanPath strips the git destination prefix from a diff file name.
func cleanPath(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '\t'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "b/")
}
