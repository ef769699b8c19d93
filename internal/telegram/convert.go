package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"channel-archive/internal/source"
)

// convertMessage maps a raw MTProto message to the platform-neutral model
// the pipeline consumes. Timestamps are UTC instants.
func convertMessage(m *tg.Message) source.Message {
	msg := source.Message{
		ID:   int64(m.ID),
		Date: time.Unix(int64(m.Date), 0).UTC(),
		Text: m.Message,
	}
	if groupedID, ok := m.GetGroupedID(); ok {
		msg.GroupedID = groupedID
	}
	if reply, ok := m.GetReplyTo(); ok {
		if header, ok := reply.(*tg.MessageReplyHeader); ok {
			if id, ok := header.GetReplyToMsgID(); ok {
				msg.ReplyToID = int64(id)
			}
		}
	}
	if fwd, ok := m.GetFwdFrom(); ok {
		msg.Forward = convertForward(fwd)
	}
	if media, ok := m.GetMedia(); ok {
		msg.Media = convertMedia(media)
	}
	if from, ok := m.GetFromID(); ok {
		msg.SenderPeer = convertPeer(from)
	} else {
		// Channel posts carry no explicit sender; the channel itself is
		// the sender.
		msg.SenderPeer = convertPeer(m.PeerID)
	}
	return msg
}

func convertForward(fwd tg.MessageFwdHeader) *source.Forward {
	forward := &source.Forward{
		FromName:    fwd.FromName,
		PostAuthor:  fwd.PostAuthor,
		ChannelPost: fwd.ChannelPost,
	}
	if fwd.Date != 0 {
		forward.Date = time.Unix(int64(fwd.Date), 0).UTC()
	}
	if peer, ok := fwd.GetFromID(); ok {
		forward.FromPeer = convertPeer(peer)
	}
	return forward
}

func convertPeer(peer tg.PeerClass) *source.Peer {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		return &source.Peer{Type: "channel", ID: p.ChannelID}
	case *tg.PeerUser:
		return &source.Peer{Type: "user", ID: p.UserID}
	case *tg.PeerChat:
		return &source.Peer{Type: "chat", ID: p.ChatID}
	default:
		return nil
	}
}

// convertMedia recognizes downloadable attachments. Anything else (polls,
// web pages, geo points) yields nil and the message contributes no media.
func convertMedia(media tg.MessageMediaClass) *source.Media {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.GetPhoto()
		if !ok {
			return nil
		}
		full, ok := photo.(*tg.Photo)
		if !ok {
			return nil
		}
		return &source.Media{FileName: "photo.jpg", Ref: full}
	case *tg.MessageMediaDocument:
		document, ok := m.GetDocument()
		if !ok {
			return nil
		}
		full, ok := document.(*tg.Document)
		if !ok {
			return nil
		}
		return &source.Media{FileName: documentFileName(full), Ref: full}
	default:
		return nil
	}
}

func documentFileName(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if filename, ok := attr.(*tg.DocumentAttributeFilename); ok {
			return filename.FileName
		}
	}
	return ""
}

// fileLocation builds the download location for a media reference captured
// by convertMedia.
func fileLocation(ref any) tg.InputFileLocationClass {
	switch media := ref.(type) {
	case *tg.Photo:
		return &tg.InputPhotoFileLocation{
			ID:            media.ID,
			AccessHash:    media.AccessHash,
			FileReference: media.FileReference,
			ThumbSize:     largestPhotoSize(media),
		}
	case *tg.Document:
		return &tg.InputDocumentFileLocation{
			ID:            media.ID,
			AccessHash:    media.AccessHash,
			FileReference: media.FileReference,
		}
	default:
		return nil
	}
}

// largestPhotoSize picks the thumb type with the largest pixel area.
func largestPhotoSize(photo *tg.Photo) string {
	var (
		best     string
		bestArea int
	)
	for _, size := range photo.Sizes {
		switch s := size.(type) {
		case *tg.PhotoSize:
			if area := s.W * s.H; area > bestArea {
				best, bestArea = s.Type, area
			}
		case *tg.PhotoSizeProgressive:
			if area := s.W * s.H; area > bestArea {
				best, bestArea = s.Type, area
			}
		}
	}
	return best
}
