package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"channel-archive/internal/archive"
)

// Planner diffs a run's aggregated updates against the published state of
// the target branch and emits only the entries that actually changed.
type Planner struct {
	store  Store
	branch string
	folder string
}

// NewPlanner creates a planner writing under folder on branch.
func NewPlanner(store Store, branch, folder string) (*Planner, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if branch == "" {
		return nil, fmt.Errorf("target branch cannot be empty")
	}
	return &Planner{store: store, branch: branch, folder: folder}, nil
}

// Plan walks every touched month and returns the changed-entry set: per-day
// files, the merged monthly file and media blobs. An empty result means the
// run is a no-op.
func (p *Planner) Plan(ctx context.Context, updates archive.Updates) ([]TreeEntry, error) {
	var entries []TreeEntry
	for _, month := range updates.Months() {
		bucket := updates[month]
		var err error
		if entries, err = p.planDailyFiles(ctx, month, bucket, entries); err != nil {
			return nil, err
		}
		if entries, err = p.planMonthlyFile(ctx, month, bucket, entries); err != nil {
			return nil, err
		}
		if entries, err = p.planMediaFiles(ctx, month, bucket, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// planDailyFiles emits one data.json per touched day, holding exactly this
// run's posts for that day.
func (p *Planner) planDailyFiles(ctx context.Context, month string, bucket *archive.MonthBucket, entries []TreeEntry) ([]TreeEntry, error) {
	for _, date := range bucket.Dates() {
		path := fmt.Sprintf("%s%s/%s/data.json", p.folder, month, date)
		content, err := marshalCompact(bucket.Content[date])
		if err != nil {
			return nil, fmt.Errorf("encode daily file %s: %w", path, err)
		}
		changed, err := p.contentChanged(ctx, path, content)
		if err != nil {
			return nil, err
		}
		if !changed {
			log.Printf("[Planner] No changes in %s. Skipping.", path)
			continue
		}
		entries = append(entries, TreeEntry{Path: path, Content: string(content)})
	}
	return entries, nil
}

// planMonthlyFile merges the month's new posts with previously published
// history, deduplicated by id and sorted descending.
func (p *Planner) planMonthlyFile(ctx context.Context, month string, bucket *archive.MonthBucket, entries []TreeEntry) ([]TreeEntry, error) {
	path := fmt.Sprintf("%s%s/data.json", p.folder, month)

	previous, err := p.previousMonthlyPosts(ctx, path)
	if err != nil {
		return nil, err
	}
	merged := archive.MergeMonthlyPosts(previous, bucket.MonthlyPosts())

	content, err := marshalCompact(merged)
	if err != nil {
		return nil, fmt.Errorf("encode monthly file %s: %w", path, err)
	}
	changed, err := p.contentChanged(ctx, path, content)
	if err != nil {
		return nil, err
	}
	if !changed {
		log.Printf("[Planner] No changes in %s. Skipping.", path)
		return entries, nil
	}
	return append(entries, TreeEntry{Path: path, Content: string(content)}), nil
}

// previousMonthlyPosts loads the published monthly archive. Absence means
// empty history; an unparseable file is fatal rather than silently treated
// as empty, which would drop archive content on the next commit.
func (p *Planner) previousMonthlyPosts(ctx context.Context, path string) ([]archive.Post, error) {
	data, err := p.store.GetContents(ctx, path, p.branch)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read previous monthly archive %s: %w", path, err)
	}

	var posts []archive.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode previous monthly archive %s: %w", path, err)
	}
	return posts, nil
}

// planMediaFiles uploads each downloaded asset as a blob and schedules it
// when its bytes differ from the published file. The local temporary file
// is removed once its bytes are referenced by a blob, or on failure.
func (p *Planner) planMediaFiles(ctx context.Context, month string, bucket *archive.MonthBucket, entries []TreeEntry) ([]TreeEntry, error) {
	for _, asset := range bucket.Media {
		var err error
		if entries, err = p.planMediaFile(ctx, month, asset, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (p *Planner) planMediaFile(ctx context.Context, month string, asset archive.MediaAsset, entries []TreeEntry) ([]TreeEntry, error) {
	defer func() {
		if err := os.Remove(asset.LocalPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[Planner] Error removing temporary file %s: %v", asset.LocalPath, err)
		}
	}()

	raw, err := os.ReadFile(asset.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("read media file %s: %w", asset.LocalPath, err)
	}

	blobSHA, err := p.store.CreateBlob(ctx, base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		return nil, fmt.Errorf("create blob for %s: %w", asset.RemotePath, err)
	}

	path := fmt.Sprintf("%s%s/%s", p.folder, month, asset.RemotePath)
	changed, err := p.contentChanged(ctx, path, raw)
	if err != nil {
		return nil, err
	}
	if !changed {
		log.Printf("[Planner] No changes in %s. Skipping.", path)
		return entries, nil
	}
	return append(entries, TreeEntry{Path: path, BlobSHA: blobSHA}), nil
}

// contentChanged reports whether the published bytes at path differ from
// content. Missing or undecodable published content counts as changed;
// transient read failures abort the run.
func (p *Planner) contentChanged(ctx context.Context, path string, content []byte) (bool, error) {
	existing, err := p.store.GetContents(ctx, path, p.branch)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUndecodable) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s on %s: %w", path, p.branch, err)
	}
	return !bytes.Equal(existing, content), nil
}

// marshalCompact renders v as compact JSON with insertion-ordered keys and
// no HTML escaping, so byte comparison against previously published content
// is stable across runs.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
