package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// CommitBuilder lands a changed-entry set as one commit on the target
// branch, creating the branch first when it does not exist yet.
type CommitBuilder struct {
	store  Store
	branch string
}

// NewCommitBuilder creates a commit builder for branch.
func NewCommitBuilder(store Store, branch string) (*CommitBuilder, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if branch == "" {
		return nil, fmt.Errorf("target branch cannot be empty")
	}
	return &CommitBuilder{store: store, branch: branch}, nil
}

// EnsureBranch makes sure the target branch exists, creating it from the
// repository's default branch tip when missing. A missing branch is not an
// error to the caller.
func (c *CommitBuilder) EnsureBranch(ctx context.Context) error {
	_, err := c.store.GetBranch(ctx, c.branch)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("get branch %s: %w", c.branch, err)
	}

	log.Printf("[Commit] Branch %s does not exist. Creating it...", c.branch)
	defaultBranch, err := c.store.DefaultBranch(ctx)
	if err != nil {
		return fmt.Errorf("get default branch: %w", err)
	}
	tip, err := c.store.GetBranch(ctx, defaultBranch)
	if err != nil {
		return fmt.Errorf("get branch %s: %w", defaultBranch, err)
	}
	if err := c.store.CreateBranch(ctx, c.branch, tip); err != nil {
		return fmt.Errorf("create branch %s from %s: %w", c.branch, defaultBranch, err)
	}
	log.Printf("[Commit] Branch %s created from %s.", c.branch, defaultBranch)
	return nil
}

// Commit layers entries onto the branch tip's tree, creates one commit
// with the tip as sole parent and fast-forwards the ref. All entries land
// in exactly this one commit.
func (c *CommitBuilder) Commit(ctx context.Context, entries []TreeEntry, message string) (string, error) {
	tip, err := c.store.GetRef(ctx, c.branch)
	if err != nil {
		return "", fmt.Errorf("resolve ref %s: %w", c.branch, err)
	}
	baseTree, err := c.store.GetTree(ctx, tip)
	if err != nil {
		return "", fmt.Errorf("resolve tree of %s: %w", tip, err)
	}
	tree, err := c.store.CreateTree(ctx, baseTree, entries)
	if err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}
	sha, err := c.store.CreateCommit(ctx, message, tree, tip)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	if err := c.store.UpdateRef(ctx, c.branch, sha); err != nil {
		return "", fmt.Errorf("update ref %s: %w", c.branch, err)
	}
	return sha, nil
}
