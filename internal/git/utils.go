package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// findGitRepositoryPath walks up from path until it finds the root of a git repository.
func findGitRepositoryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is not set")
	}

	for {
		if _, err := git.PlainOpen(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	return "", fmt.Errorf("%q is not inside a git repository", path)
}
