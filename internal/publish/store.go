package publish

import (
	"context"
	"errors"
)

// ErrNotFound reports that a branch or file does not exist in the
// repository. Callers recover from it locally; it never aborts a run.
var ErrNotFound = errors.New("not found")

// ErrUndecodable reports existing remote content whose bytes cannot be
// recovered. The planner treats it as "content differs".
var ErrUndecodable = errors.New("undecodable content")

// TreeEntry is one path scheduled for the run's single commit. Exactly one
// of Content (inline text) or BlobSHA (pre-created binary blob) is set.
type TreeEntry struct {
	Path    string
	Content string
	BlobSHA string
}

// Store is the repository surface needed to publish one atomic commit.
type Store interface {
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context) (string, error)

	// GetBranch returns the tip commit sha of a branch, or ErrNotFound.
	GetBranch(ctx context.Context, name string) (string, error)

	// CreateBranch creates a branch pointing at fromSHA.
	CreateBranch(ctx context.Context, name, fromSHA string) error

	// GetRef returns the commit sha a branch ref currently points to.
	GetRef(ctx context.Context, branch string) (string, error)

	// GetTree resolves a commit sha to its tree sha.
	GetTree(ctx context.Context, sha string) (string, error)

	// GetContents returns the decoded bytes of path on ref. Missing paths
	// yield ErrNotFound, undecodable content ErrUndecodable.
	GetContents(ctx context.Context, path, ref string) ([]byte, error)

	// CreateBlob stores base64-encoded bytes and returns the blob sha.
	CreateBlob(ctx context.Context, base64Content string) (string, error)

	// CreateTree layers entries onto baseTree and returns the new tree sha.
	CreateTree(ctx context.Context, baseTree string, entries []TreeEntry) (string, error)

	// CreateCommit creates a commit with a single parent.
	CreateCommit(ctx context.Context, message, treeSHA, parentSHA string) (string, error)

	// UpdateRef fast-forwards a branch ref to sha.
	UpdateRef(ctx context.Context, branch, sha string) error
}
