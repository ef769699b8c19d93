// Package github adapts the GitHub REST API to the publish.Store interface.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"go.uber.org/ratelimit"
	"golang.org/x/oauth2"

	"channel-archive/internal/publish"
)

// readRateLimit caps content reads per second; the planner performs one
// read per candidate path and the REST API budget is shared with commits.
const readRateLimit = 5

// Store talks to one GitHub repository on behalf of the publisher.
type Store struct {
	client *gh.Client
	owner  string
	repo   string
	reads  ratelimit.Limiter
}

// NewStore creates a token-authenticated store for an "owner/name"
// repository identifier.
func NewStore(token, repository string) (*Store, error) {
	if token == "" {
		return nil, fmt.Errorf("github token cannot be empty")
	}
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must be owner/name, got %q", repository)
	}

	httpClient := oauth2.NewClient(context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return &Store{
		client: gh.NewClient(httpClient),
		owner:  owner,
		repo:   name,
		reads:  ratelimit.New(readRateLimit),
	}, nil
}

func (s *Store) DefaultBranch(ctx context.Context) (string, error) {
	repo, _, err := s.client.Repositories.Get(ctx, s.owner, s.repo)
	if err != nil {
		return "", fmt.Errorf("get repository %s/%s: %w", s.owner, s.repo, err)
	}
	return repo.GetDefaultBranch(), nil
}

func (s *Store) GetBranch(ctx context.Context, name string) (string, error) {
	branch, resp, err := s.client.Repositories.GetBranch(ctx, s.owner, s.repo, name, 0)
	if isNotFound(resp) {
		return "", fmt.Errorf("branch %s: %w", name, publish.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get branch %s: %w", name, err)
	}
	return branch.GetCommit().GetSHA(), nil
}

func (s *Store) CreateBranch(ctx context.Context, name, fromSHA string) error {
	ref := &gh.Reference{
		Ref:    gh.Ptr("refs/heads/" + name),
		Object: &gh.GitObject{SHA: gh.Ptr(fromSHA)},
	}
	if _, _, err := s.client.Git.CreateRef(ctx, s.owner, s.repo, ref); err != nil {
		return fmt.Errorf("create ref %s: %w", name, err)
	}
	return nil
}

func (s *Store) GetRef(ctx context.Context, branch string) (string, error) {
	ref, _, err := s.client.Git.GetRef(ctx, s.owner, s.repo, "heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("get ref %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

func (s *Store) GetTree(ctx context.Context, sha string) (string, error) {
	tree, _, err := s.client.Git.GetTree(ctx, s.owner, s.repo, sha, false)
	if err != nil {
		return "", fmt.Errorf("get tree %s: %w", sha, err)
	}
	return tree.GetSHA(), nil
}

// GetContents fetches and decodes the published bytes at path on ref.
// Missing files map to publish.ErrNotFound, content the API cannot hand
// back as bytes to publish.ErrUndecodable.
func (s *Store) GetContents(ctx context.Context, path, ref string) ([]byte, error) {
	s.reads.Take()

	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path,
		&gh.RepositoryContentGetOptions{Ref: ref})
	if isNotFound(resp) {
		return nil, fmt.Errorf("contents of %s: %w", path, publish.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contents of %s: %w", path, err)
	}
	if file == nil {
		// Path resolved to a directory listing.
		return nil, fmt.Errorf("contents of %s: %w", path, publish.ErrUndecodable)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("contents of %s: %v: %w", path, err, publish.ErrUndecodable)
	}
	return []byte(content), nil
}

func (s *Store) CreateBlob(ctx context.Context, base64Content string) (string, error) {
	blob := &gh.Blob{Content: gh.Ptr(base64Content), Encoding: gh.Ptr("base64")}
	created, _, err := s.client.Git.CreateBlob(ctx, s.owner, s.repo, blob)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	return created.GetSHA(), nil
}

func (s *Store) CreateTree(ctx context.Context, baseTree string, entries []publish.TreeEntry) (string, error) {
	treeEntries := make([]*gh.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		te := &gh.TreeEntry{
			Path: gh.Ptr(entry.Path),
			Mode: gh.Ptr("100644"),
			Type: gh.Ptr("blob"),
		}
		if entry.BlobSHA != "" {
			te.SHA = gh.Ptr(entry.BlobSHA)
		} else {
			te.Content = gh.Ptr(entry.Content)
		}
		treeEntries = append(treeEntries, te)
	}

	tree, _, err := s.client.Git.CreateTree(ctx, s.owner, s.repo, baseTree, treeEntries)
	if err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}
	return tree.GetSHA(), nil
}

func (s *Store) CreateCommit(ctx context.Context, message, treeSHA, parentSHA string) (string, error) {
	commit := &gh.Commit{
		Message: gh.Ptr(message),
		Tree:    &gh.Tree{SHA: gh.Ptr(treeSHA)},
		Parents: []*gh.Commit{{SHA: gh.Ptr(parentSHA)}},
	}
	created, _, err := s.client.Git.CreateCommit(ctx, s.owner, s.repo, commit, nil)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	return created.GetSHA(), nil
}

func (s *Store) UpdateRef(ctx context.Context, branch, sha string) error {
	ref := &gh.Reference{
		Ref:    gh.Ptr("refs/heads/" + branch),
		Object: &gh.GitObject{SHA: gh.Ptr(sha)},
	}
	if _, _, err := s.client.Git.UpdateRef(ctx, s.owner, s.repo, ref, false); err != nil {
		return fmt.Errorf("update ref %s: %w", branch, err)
	}
	return nil
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
