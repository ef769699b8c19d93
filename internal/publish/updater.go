package publish

import (
	"context"
	"fmt"
	"log"
	"time"

	"channel-archive/internal/archive"
)

// Updater publishes one run's aggregated updates to the repository:
// ensure the branch, diff every candidate path, land the changed set in a
// single commit. Zero changes means zero commits.
type Updater struct {
	planner *Planner
	commits *CommitBuilder
	branch  string
}

// NewUpdater wires a planner and commit builder for branch and folder.
func NewUpdater(store Store, branch, folder string) (*Updater, error) {
	planner, err := NewPlanner(store, branch, folder)
	if err != nil {
		return nil, err
	}
	commits, err := NewCommitBuilder(store, branch)
	if err != nil {
		return nil, err
	}
	return &Updater{planner: planner, commits: commits, branch: branch}, nil
}

// Update diffs updates against the branch and commits whatever changed.
// It returns the new commit sha, or "" when the run was a no-op. Leftover
// temporary media files are removed regardless of the outcome.
func (u *Updater) Update(ctx context.Context, updates archive.Updates) (string, error) {
	defer updates.CleanupMedia()

	if err := u.commits.EnsureBranch(ctx); err != nil {
		return "", err
	}

	entries, err := u.planner.Plan(ctx, updates)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		log.Println("[Updater] No new updates found. Skipping commit.")
		return "", nil
	}

	message := fmt.Sprintf("Update for %s", time.Now().Format("2006-01-02 15:04:05"))
	sha, err := u.commits.Commit(ctx, entries, message)
	if err != nil {
		return "", err
	}
	log.Printf("[Updater] Committed %d file(s) to %s: %s", len(entries), u.branch, sha)
	return sha, nil
}
