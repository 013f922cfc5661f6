package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the repository an analysis ran against.
type RepositoryMetadata struct {
	RootFolder string  `json:"root_folder"`
	BranchName *string `json:"branch_name,omitempty"`
	CommitHash *string `json:"commit_hash,omitempty"`
	RemoteURL  *string `json:"remote_url,omitempty"`
}

// CollectRepositoryMetadata collects the root folder, branch, HEAD commit and origin URL
// of the repository containing path.
func CollectRepositoryMetadata(path string) (*RepositoryMetadata, error) {
	if path == "" {
		return &RepositoryMetadata{}, fmt.Errorf("repository path is not set")
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	md := &RepositoryMetadata{RootFolder: filepath.Clean(path)}

	root, err := findGitRepositoryPath(path)
	if err != nil {
		return md, err
	}
	md.RootFolder = filepath.Clean(root)

	repo, err := git.PlainOpen(root)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote(origin); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			remoteURL := strings.TrimSuffix(cfg.URLs[0], ".git")
			md.RemoteURL = &remoteURL
		}
	}

	return md, nil
}
