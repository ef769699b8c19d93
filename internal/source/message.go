package source

import "time"

// Peer identifies the kind and id of a Telegram peer (channel, user or chat).
type Peer struct {
	Type string
	ID   int64
}

// Forward carries the provenance header of a forwarded message.
type Forward struct {
	FromPeer    *Peer
	FromName    string
	PostAuthor  string
	SenderName  string
	ChannelPost int
	Date        time.Time
}

// Media marks a message attachment that can be downloaded.
// Ref is an opaque handle set and consumed by the source adapter; the
// pipeline never inspects it.
type Media struct {
	FileName string
	Ref      any
}

// Message is one raw channel message as read from the source platform.
// Date is always UTC. GroupedID is zero for messages that are not part of
// a multi-item post, ReplyToID is zero for messages that are not replies.
type Message struct {
	ID         int64
	Date       time.Time
	Text       string
	GroupedID  int64
	Media      *Media
	ReplyToID  int64
	Forward    *Forward
	SenderPeer *Peer
}

// ChannelRef is a resolved channel handle.
type ChannelRef struct {
	ID         int64
	AccessHash int64
	Username   string
	Title      string
}
