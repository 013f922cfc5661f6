package git

import "errors"

// Diff range errors
var (
	ErrBaseRequired   = errors.New("base revision is required to compute diff")
	ErrHeadRequired   = errors.New("head revision is required to compute diff")
	ErrCommitNotFound = errors.New("commit not found locally and fetching is disabled")
)
