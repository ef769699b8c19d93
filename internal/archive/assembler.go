package archive

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"channel-archive/internal/source"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"

	quotedTextLimit = 80
)

// Assembler converts one adjacency group of raw messages into a single
// Post plus the media assets downloaded for it.
type Assembler struct {
	client  source.Client
	channel source.ChannelRef
	loc     *time.Location
}

// NewAssembler creates an assembler for one resolved channel.
func NewAssembler(client source.Client, channel source.ChannelRef, loc *time.Location) (*Assembler, error) {
	if client == nil {
		return nil, fmt.Errorf("source client cannot be nil")
	}
	if loc == nil {
		return nil, fmt.Errorf("time location cannot be nil")
	}
	return &Assembler{client: client, channel: channel, loc: loc}, nil
}

// Assemble builds the post for one ordered message group. The first message
// anchors the post's id, date and creation time. The returned post may be
// empty; callers drop empty posts together with their assets.
//
// A failing media download aborts the run; a failing reply resolution only
// degrades the post (no quoted message) and is logged.
func (a *Assembler) Assemble(ctx context.Context, group []source.Message) (Post, []MediaAsset, error) {
	if len(group) == 0 {
		return Post{}, nil, fmt.Errorf("message group cannot be empty")
	}

	anchor := group[0]
	local := anchor.Date.In(a.loc)
	post := Post{
		ID:        anchor.ID,
		CreatedAt: local.Format(timeLayout),
		Date:      local.Format(dateLayout),
		Photos:    []Photo{},
		Tags:      []string{},
	}

	tagSet := make(map[string]struct{})
	var assets []MediaAsset

	for _, msg := range group {
		if msg.Text == "" && msg.Media == nil {
			continue
		}

		text, tags := ExtractTags(msg.Text)
		for _, tag := range tags {
			tagSet[tag] = struct{}{}
		}
		post.Text = strings.TrimSpace(post.Text + "\n" + text)

		// Only the first forwarded message in the group sets provenance.
		if post.ForwardedInfo == nil && msg.Forward != nil {
			post.ForwardedInfo = a.forwardedInfo(msg.Forward)
		}

		if msg.Media != nil {
			asset, photo, err := a.downloadMedia(ctx, msg, post.Date)
			if err != nil {
				return Post{}, assets, err
			}
			if photo != nil {
				assets = append(assets, *asset)
				post.Photos = append(post.Photos, *photo)
			}
		}

		if post.QuotedMessage == nil && msg.ReplyToID != 0 {
			quoted, err := a.resolveQuoted(ctx, msg)
			if err != nil {
				log.Printf("[Assembler Post:%d] Error fetching replied message for %d: %v", anchor.ID, msg.ID, err)
			} else if quoted != nil {
				post.QuotedMessage = quoted
			}
		}
	}

	post.Tags = sortedTags(tagSet)
	reversePhotos(post.Photos)

	return post, assets, nil
}

// downloadMedia materializes one attachment. A download that yields no path
// means the message carried nothing usable; the post continues without it.
func (a *Assembler) downloadMedia(ctx context.Context, msg source.Message, date string) (*MediaAsset, *Photo, error) {
	filename := MediaFilename(msg, msg.Media.FileName)
	localPath, err := a.client.DownloadMedia(ctx, msg, filename)
	if err != nil {
		return nil, nil, fmt.Errorf("download media for message %d: %w", msg.ID, err)
	}
	if localPath == "" {
		return nil, nil, nil
	}

	width, height := ImageDimensions(localPath)
	name := filepath.Base(localPath)
	asset := &MediaAsset{RemotePath: date + "/" + name, LocalPath: localPath}
	photo := &Photo{Path: name, Width: width, Height: height, ID: msg.ID}
	return asset, photo, nil
}

func (a *Assembler) forwardedInfo(fwd *source.Forward) *ForwardedInfo {
	info := &ForwardedInfo{
		FromName:    firstNonEmpty(fwd.FromName, fwd.PostAuthor, fwd.SenderName),
		ChannelPost: fwd.ChannelPost,
	}
	if !fwd.Date.IsZero() {
		info.CreatedAt = fwd.Date.UTC().Format(timeLayout)
	}
	if fwd.FromPeer != nil {
		info.FromID = strconv.FormatInt(fwd.FromPeer.ID, 10)
		info.FromType = fwd.FromPeer.Type
	}
	return info
}

// resolveQuoted fetches and summarizes the reply target of msg. A nil
// result with nil error means the target no longer exists.
func (a *Assembler) resolveQuoted(ctx context.Context, msg source.Message) (*QuotedMessage, error) {
	replied, err := a.client.ReplyMessage(ctx, a.channel, msg)
	if err != nil {
		return nil, err
	}
	if replied == nil {
		return nil, nil
	}

	quoted := &QuotedMessage{
		ID:        replied.ID,
		Text:      truncateRunes(replied.Text, quotedTextLimit),
		CreatedAt: replied.Date.In(a.loc).Format(timeLayout),
	}
	if replied.SenderPeer != nil {
		quoted.FromID = strconv.FormatInt(replied.SenderPeer.ID, 10)
		quoted.FromType = replied.SenderPeer.Type
	}
	return quoted, nil
}

func sortedTags(set map[string]struct{}) []string {
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// reversePhotos flips the download order so the last downloaded attachment
// is listed first, matching the display order the archive consumer expects.
func reversePhotos(photos []Photo) {
	for i, j := 0, len(photos)-1; i < j; i, j = i+1, j-1 {
		photos[i], photos[j] = photos[j], photos[i]
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
