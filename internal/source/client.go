package source

import (
	"context"
	"time"
)

// MessageIter walks a channel's history oldest first, cursor style.
// Next reports whether another message is available; Err must be checked
// once Next returns false.
type MessageIter interface {
	Next(ctx context.Context) bool
	Message() Message
	Err() error
}

// Client is the surface of the messaging source consumed by the pipeline.
type Client interface {
	// ResolveChannel resolves a public channel username to a channel reference.
	ResolveChannel(ctx context.Context, username string) (ChannelRef, error)

	// Messages iterates the channel history chronologically ascending,
	// starting at the first message dated at or after offsetDate.
	Messages(ctx context.Context, ch ChannelRef, offsetDate time.Time) MessageIter

	// DownloadMedia materializes a message attachment to a local file named
	// filename. It returns the local path, or "" when the message carries
	// nothing downloadable.
	DownloadMedia(ctx context.Context, msg Message, filename string) (string, error)

	// ReplyMessage fetches the message that msg replies to, or nil when the
	// target no longer exists.
	ReplyMessage(ctx context.Context, ch ChannelRef, msg Message) (*Message, error)
}
