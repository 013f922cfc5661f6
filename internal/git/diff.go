package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/complyscan/internal/diff"
)

const (
	origin       = "origin"
	tmpRefPrefix = "refs/complyscan/tmp/"
)

var fullHash = regexp.MustCompile(`^[0-9a-f]{40}$`)

// FileDiffs returns the per-file patches between base and head. Both may be full
// commit hashes or revisions such as branch names. Deleted files are skipped and,
// when filters is not empty, only the listed paths are returned. repoPath may point
// anywhere inside the work tree; paths stay relative to the repository root.
func (c *Client) FileDiffs(ctx context.Context, repoPath, base, head string, filters []string) ([]diff.FileDiff, error) {
	if base == "" {
		return nil, ErrBaseRequired
	}
	if head == "" {
		return nil, ErrHeadRequired
	}

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}

	baseCommit, err := c.resolveCommit(ctx, repo, base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base commit %q: %w", base, err)
	}
	headCommit, err := c.resolveCommit(ctx, repo, head)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head commit %q: %w", head, err)
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load base tree: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load head tree: %w", err)
	}

	patch, err := baseTree.PatchContext(ctx, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	fileDiffs, err := diff.SplitMultiFile(patch.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	allowed := buildFilterSet(filters)
	result := make([]diff.FileDiff, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		if len(allowed) > 0 && !allowed[fd.Path] {
			continue
		}
		result = append(result, fd)
	}

	c.logger.Debug("diff computed", "base", baseCommit.Hash.String(), "head", headCommit.Hash.String(), "files", len(result))
	return result, nil
}

// resolveCommit resolves a revision to a commit, fetching full hashes that are
// missing from a shallow clone.
func (c *Client) resolveCommit(ctx context.Context, repo *git.Repository, revision string) (*object.Commit, error) {
	if fullHash.MatchString(revision) {
		hash := plumbing.NewHash(revision)
		if err := c.ensureCommitPresent(ctx, repo, hash); err != nil {
			return nil, err
		}
		return repo.CommitObject(hash)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, err
	}
	return repo.CommitObject(*hash)
}

func (c *Client) ensureCommitPresent(ctx context.Context, repo *git.Repository, hash plumbing.Hash) error {
	if _, err := repo.CommitObject(hash); err == nil {
		return nil
	}
	if !c.fetchMissing {
		return ErrCommitNotFound
	}
	c.logger.Debug("commit missing locally, attempting fetch", "hash", hash.String())
	return c.fetchCommit(ctx, repo, hash)
}

func (c *Client) fetchCommit(ctx context.Context, repo *git.Repository, hash plumbing.Hash) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	remoteName := origin
	if _, err := repo.Remote(remoteName); err != nil {
		remotes, rErr := repo.Remotes()
		if rErr != nil || len(remotes) == 0 {
			return fmt.Errorf("no remotes available to fetch commit %s", hash.String())
		}
		remoteName = remotes[0].Config().Name
	}

	tmpRef := plumbing.ReferenceName(tmpRefPrefix + hash.String())
	refspec := config.RefSpec(fmt.Sprintf("+%s:%s", hash.String(), tmpRef.String()))

	c.logger.Debug("fetching commit", "remote", remoteName, "hash", hash.String())

	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName:      remoteName,
		Auth:            c.auth,
		InsecureSkipTLS: c.insecureTLS,
		Progress:        c.logger.StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Debug}),
		Depth:           1,
		RefSpecs:        []config.RefSpec{refspec},
		Tags:            git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		c.logger.Warn("fetch commit failed", "hash", hash.String(), "error", err)
		return err
	}

	defer func() {
		_ = repo.Storer.RemoveReference(tmpRef)
	}()

	if _, err := repo.CommitObject(hash); err != nil {
		return err
	}
	c.logger.Debug("commit fetched", "hash", hash.String())
	return nil
}

// buildFilterSet returns an O(1) lookup table for the provided filter slice.
// Nil is returned when no filters are supplied to avoid extra map checks downstream.
func buildFilterSet(filters []string) map[string]bool {
	if len(filters) == 0 {
		return nil
	}
	set := make(map[string]bool, len(filters))
	for _, f := range filters {
		if f == "" {
			continue
		}
		set[f] = true
	}
	return set
}
