package archive

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"channel-archive/internal/source"
)

// DefaultDayLimit is the look-back window applied when none is configured.
const DefaultDayLimit = 7

// Pipeline drives one archive run from raw channel history to aggregated
// per-month updates: range selection, grouping, assembly, bucketing.
type Pipeline struct {
	client   source.Client
	handle   string
	dayLimit int
	loc      *time.Location
}

// NewPipeline validates and wires the pipeline dependencies.
func NewPipeline(client source.Client, handle string, dayLimit int, loc *time.Location) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("source client cannot be nil")
	}
	if handle == "" {
		return nil, fmt.Errorf("channel handle cannot be empty")
	}
	if loc == nil {
		return nil, fmt.Errorf("time location cannot be nil")
	}
	if dayLimit <= 0 {
		dayLimit = DefaultDayLimit
	}
	return &Pipeline{client: client, handle: handle, dayLimit: dayLimit, loc: loc}, nil
}

// Run executes one archive run anchored at now and returns the updates to
// publish. Any fetch or assembly error aborts the run; posts with no text
// and no media are discarded together with their downloaded assets.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Updates, error) {
	channel, err := p.client.ResolveChannel(ctx, p.handle)
	if err != nil {
		return nil, fmt.Errorf("resolve channel %s: %w", p.handle, err)
	}

	window := ComputeWindow(now, p.dayLimit, p.loc)
	log.Printf("[Pipeline Channel:%s] Fetching messages from %s to %s", p.handle,
		window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))

	messages, err := CollectMessages(ctx, p.client.Messages(ctx, channel, window.Start), window)
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline Channel:%s] Collected %d message(s)", p.handle, len(messages))

	assembler, err := NewAssembler(p.client, channel, p.loc)
	if err != nil {
		return nil, err
	}

	updates := make(Updates)
	for _, group := range GroupMessages(messages) {
		post, media, err := assembler.Assemble(ctx, group)
		if err != nil {
			// Abandoning the run: earlier groups' downloads never reach the
			// publisher, so they are removed here too.
			removeLocalMedia(media)
			updates.CleanupMedia()
			return nil, err
		}
		if post.Empty() {
			// Discarded posts contribute no media either.
			removeLocalMedia(media)
			continue
		}
		updates.Add(post, media)
	}

	log.Printf("[Pipeline Channel:%s] Assembled updates for %d month(s)", p.handle, len(updates))
	return updates, nil
}

func removeLocalMedia(media []MediaAsset) {
	for _, asset := range media {
		if err := os.Remove(asset.LocalPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[Pipeline] Error removing temporary file %s: %v", asset.LocalPath, err)
		}
	}
}
