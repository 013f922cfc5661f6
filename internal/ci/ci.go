// Package ci discovers the revisions of a change from CI environment variables.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CIKind represents the type of CI.
type CIKind int

const (
	// CIUnknown indicates the CI provider could not be identified.
	CIUnknown CIKind = iota
	// CIGitHub identifies GitHub Actions.
	CIGitHub
	// CIGitLab identifies GitLab CI.
	CIGitLab
	// CIBitbucket identifies Bitbucket Pipelines.
	CIBitbucket
)

// zeroHash is reported by GitLab as the previous commit of a new branch.
const zeroHash = "0000000000000000000000000000000000000000"

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// CIEnvironment captures the change metadata derived from environment variables.
type CIEnvironment struct {
	Kind               CIKind
	CI                 bool
	CommitHash         string // CommitHash is the tip commit that triggered the job.
	BaseCommitHash     string // BaseCommitHash is the merge base or target commit of a pull request, when known.
	BaseBranch         string // BaseBranch is the target branch of a pull request.
	ReferenceName      string
	RepositoryFullName string
}

// String returns the human-readable string representation of a CIKind.
func (c CIKind) String() string {
	switch c {
	case CIGitHub:
		return "github"
	case CIGitLab:
		return "gitlab"
	case CIBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// ParseCIKind converts a string identifier into a CIKind value.
func ParseCIKind(raw string) (CIKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "github":
		return CIGitHub, nil
	case "gitlab":
		return CIGitLab, nil
	case "bitbucket":
		return CIBitbucket, nil
	default:
		return CIUnknown, fmt.Errorf("unsupported ci kind %q", raw)
	}
}

// DetectCIKind attempts to infer the CI provider from well-known environment variables.
func DetectCIKind() CIKind {
	return detectCIKindWithLookup(os.Getenv)
}

func detectCIKindWithLookup(lookup LookupFunc) CIKind {
	if lookup == nil {
		lookup = os.Getenv
	}

	if lookup("GITHUB_ACTIONS") != "" || lookup("GITHUB_SHA") != "" {
		return CIGitHub
	}
	if strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "" {
		return CIGitLab
	}
	if lookup("BITBUCKET_COMMIT") != "" || lookup("BITBUCKET_REPO_SLUG") != "" {
		return CIBitbucket
	}

	return CIUnknown
}

// GetCIEnvironment returns the CI metadata for the provided kind using the process environment.
func GetCIEnvironment(kind CIKind) (CIEnvironment, error) {
	return getCIEnvironment(kind, os.Getenv)
}

func getCIEnvironment(kind CIKind, lookup LookupFunc) (CIEnvironment, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch kind {
	case CIGitHub:
		return extractGitHubVariables(lookup), nil
	case CIGitLab:
		return extractGitLabVariables(lookup), nil
	case CIBitbucket:
		return extractBitbucketVariables(lookup), nil
	default:
		return CIEnvironment{}, fmt.Errorf("unsupported ci kind: %s", kind)
	}
}

// extractGitHubVariables builds the CIEnvironment from GitHub-specific variables.
// GITHUB_BASE_REF is only set for pull_request events.
// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func extractGitHubVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	refName := lookup("GITHUB_HEAD_REF")
	if refName == "" {
		refName = lookup("GITHUB_REF_NAME")
	}

	return CIEnvironment{
		Kind:               CIGitHub,
		CI:                 ci,
		CommitHash:         lookup("GITHUB_SHA"),
		BaseBranch:         lookup("GITHUB_BASE_REF"),
		ReferenceName:      refName,
		RepositoryFullName: lookup("GITHUB_REPOSITORY"),
	}
}

// extractGitLabVariables builds the CIEnvironment from GitLab-specific variables.
// Merge request pipelines expose the diff base directly; branch pipelines fall back to
// the previous tip of the branch.
// See https://docs.gitlab.com/ci/variables/predefined_variables/.
func extractGitLabVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	base := lookup("CI_MERGE_REQUEST_DIFF_BASE_SHA")
	if base == "" {
		base = lookup("CI_COMMIT_BEFORE_SHA")
	}
	if base == zeroHash {
		base = ""
	}

	refName := lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	if refName == "" {
		refName = lookup("CI_COMMIT_REF_NAME")
	}

	return CIEnvironment{
		Kind:               CIGitLab,
		CI:                 ci,
		CommitHash:         lookup("CI_COMMIT_SHA"),
		BaseCommitHash:     base,
		BaseBranch:         lookup("CI_MERGE_REQUEST_TARGET_BRANCH_NAME"),
		ReferenceName:      refName,
		RepositoryFullName: lookup("CI_PROJECT_PATH"),
	}
}

// extractBitbucketVariables builds the CIEnvironment from Bitbucket-specific variables.
// See https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func extractBitbucketVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	refName := lookup("BITBUCKET_BRANCH")
	if refName == "" {
		refName = lookup("BITBUCKET_TAG")
	}

	return CIEnvironment{
		Kind:               CIBitbucket,
		CI:                 ci,
		CommitHash:         lookup("BITBUCKET_COMMIT"),
		BaseCommitHash:     lookup("BITBUCKET_PR_DESTINATION_COMMIT"),
		BaseBranch:         lookup("BITBUCKET_PR_DESTINATION_BRANCH"),
		ReferenceName:      refName,
		RepositoryFullName: lookup("BITBUCKET_REPO_FULL_NAME"),
	}
}
