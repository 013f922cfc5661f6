package ci

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Revisions are the base and head revisions of the change under analysis.
type Revisions struct {
	Kind     CIKind
	Base     string
	Head     string
	Hydrated bool
}

// ResolveRevisions completes base and head from the CI environment. Explicit values
// are preferred. An error is returned when either revision is still unknown.
func ResolveRevisions(log hclog.Logger, base, head string) (Revisions, error) {
	return resolveRevisionsWithLookup(log, base, head, os.Getenv)
}

func resolveRevisionsWithLookup(log hclog.Logger, base, head string, lookup LookupFunc) (Revisions, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	result := Revisions{
		Base: strings.TrimSpace(base),
		Head: strings.TrimSpace(head),
	}
	if result.Base != "" && result.Head != "" {
		return result, nil
	}

	result.Kind = detectCIKindWithLookup(lookup)
	if result.Kind == CIUnknown {
		return result, fmt.Errorf("ci: unable to detect CI environment; specify --base and --head")
	}

	env, err := getCIEnvironment(result.Kind, lookup)
	if err != nil {
		return result, err
	}

	if result.Head == "" && env.CommitHash != "" {
		result.Head = env.CommitHash
		result.Hydrated = true
		log.Debug("hydrated head revision from CI environment", "kind", result.Kind.String(), "head", result.Head)
	}
	if result.Base == "" {
		switch {
		case env.BaseCommitHash != "":
			result.Base = env.BaseCommitHash
		case env.BaseBranch != "":
			result.Base = "origin/" + env.BaseBranch
		}
		if result.Base != "" {
			result.Hydrated = true
			log.Debug("hydrated base revision from CI environment", "kind", result.Kind.String(), "base", result.Base)
		}
	}

	if result.Base == "" || result.Head == "" {
		return result, fmt.Errorf("ci: %s environment does not describe a change (reference %q); specify --base and --head", result.Kind, env.ReferenceName)
	}
	log.Info("resolved revisions from CI environment", "kind", result.Kind.String(), "repository", env.RepositoryFullName, "base", result.Base, "head", result.Head)
	return result, nil
}
