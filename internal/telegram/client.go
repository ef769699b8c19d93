// Package telegram adapts a gotd MTProto session to the source.Client
// interface consumed by the archive pipeline.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	"channel-archive/internal/source"
)

// Options configures the Telegram connection. SessionString is a stored
// Telethon-format string session; interactive login is not supported in a
// batch job.
type Options struct {
	APIID         int
	APIHash       string
	SessionString string
}

// Run connects to Telegram with the stored session and invokes fn with a
// connected source client. The connection is scoped to fn: it is closed
// when fn returns, and fn's error becomes Run's error.
func Run(ctx context.Context, opts Options, fn func(ctx context.Context, client source.Client) error) error {
	if opts.SessionString == "" {
		return fmt.Errorf("session string cannot be empty")
	}

	data, err := session.TelethonSession(opts.SessionString)
	if err != nil {
		return fmt.Errorf("decode telethon session string: %w", err)
	}
	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return fmt.Errorf("prime session storage: %w", err)
	}

	client := telegram.NewClient(opts.APIID, opts.APIHash, telegram.Options{
		SessionStorage: storage,
	})
	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("check authorization: %w", err)
		}
		if !status.Authorized {
			return fmt.Errorf("telegram session is not authorized")
		}
		return fn(ctx, &Client{api: client.API(), downloads: downloader.NewDownloader()})
	})
}

// Client implements source.Client over the raw MTProto API.
type Client struct {
	api       *tg.Client
	downloads *downloader.Downloader
}

// ResolveChannel resolves a public username to a channel reference.
func (c *Client) ResolveChannel(ctx context.Context, username string) (source.ChannelRef, error) {
	resolved, err := c.api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return source.ChannelRef{}, fmt.Errorf("resolve username %s: %w", username, err)
	}
	for _, chat := range resolved.Chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return source.ChannelRef{
				ID:         channel.ID,
				AccessHash: channel.AccessHash,
				Username:   username,
				Title:      channel.Title,
			}, nil
		}
	}
	return source.ChannelRef{}, fmt.Errorf("username %s does not resolve to a channel", username)
}

// Messages returns an ascending history iterator seeded at offsetDate.
func (c *Client) Messages(ctx context.Context, ch source.ChannelRef, offsetDate time.Time) source.MessageIter {
	return &historyIter{
		api:        c.api,
		peer:       &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
		offsetDate: int(offsetDate.Unix()),
	}
}

// DownloadMedia materializes a message attachment into filename in the
// working directory. Messages without a usable attachment yield "".
func (c *Client) DownloadMedia(ctx context.Context, msg source.Message, filename string) (string, error) {
	if msg.Media == nil {
		return "", nil
	}

	location := fileLocation(msg.Media.Ref)
	if location == nil {
		return "", nil
	}
	if _, err := c.downloads.Download(c.api, location).ToPath(ctx, filename); err != nil {
		return "", fmt.Errorf("download %s: %w", filename, err)
	}
	return filename, nil
}

// ReplyMessage fetches the message msg replies to. A deleted target yields
// nil without error.
func (c *Client) ReplyMessage(ctx context.Context, ch source.ChannelRef, msg source.Message) (*source.Message, error) {
	if msg.ReplyToID == 0 {
		return nil, nil
	}

	result, err := c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: int(msg.ReplyToID)}},
	})
	if err != nil {
		return nil, fmt.Errorf("get message %d: %w", msg.ReplyToID, err)
	}

	messages, ok := result.(*tg.MessagesChannelMessages)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T for message %d", result, msg.ReplyToID)
	}
	for _, raw := range messages.Messages {
		if full, ok := raw.(*tg.Message); ok {
			converted := convertMessage(full)
			return &converted, nil
		}
	}
	log.Printf("[Telegram] Reply target %d no longer exists", msg.ReplyToID)
	return nil, nil
}
