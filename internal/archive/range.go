package archive

import (
	"context"
	"fmt"
	"time"

	"channel-archive/internal/source"
)

// Window is the inclusive UTC time range covered by one archive run.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow derives the run window from the current instant: start is
// local midnight dayLimit days back, end is now. Both bounds are returned
// in UTC for comparison against message timestamps; swapped when inverted.
func ComputeWindow(now time.Time, dayLimit int, loc *time.Location) Window {
	local := now.In(loc)
	back := local.AddDate(0, 0, -dayLimit)
	start := time.Date(back.Year(), back.Month(), back.Day(), 0, 0, 0, 0, loc)

	w := Window{Start: start.UTC(), End: local.UTC()}
	if w.Start.After(w.End) {
		w.Start, w.End = w.End, w.Start
	}
	return w
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CollectMessages drains an ascending history iterator into an oldest-first
// slice bounded by w. Iteration stops at the first message newer than the
// window's end; a message older than the start also terminates early, since
// the stream is expected to yield in a single monotonic direction.
func CollectMessages(ctx context.Context, iter source.MessageIter, w Window) ([]source.Message, error) {
	var messages []source.Message
	for iter.Next(ctx) {
		msg := iter.Message()
		if msg.Date.Before(w.Start) || msg.Date.After(w.End) {
			break
		}
		messages = append(messages, msg)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel history: %w", err)
	}
	return messages, nil
}
