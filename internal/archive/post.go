package archive

// Photo describes one downloaded attachment of a post. ID is the raw
// message that carried the attachment, Path the file name within the
// post's date folder.
type Photo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	ID     int64  `json:"id"`
}

// QuotedMessage summarizes the reply target of a post.
type QuotedMessage struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	FromID    string `json:"from_id"`
	CreatedAt string `json:"created_at"`
	FromType  string `json:"from_type,omitempty"`
}

// ForwardedInfo records where a forwarded post originally came from.
type ForwardedInfo struct {
	FromID      string `json:"from_id"`
	FromName    string `json:"from_name"`
	ChannelPost int    `json:"channel_post"`
	CreatedAt   string `json:"created_at"`
	FromType    string `json:"from_type,omitempty"`
}

// Post is the unit of publication: one or more raw messages sharing a
// contiguous group id, merged into a single record. Field order matters;
// it fixes the key order of the published JSON.
type Post struct {
	ID            int64          `json:"id"`
	CreatedAt     string         `json:"created_at"`
	Date          string         `json:"date"`
	Text          string         `json:"text"`
	Photos        []Photo        `json:"photos"`
	Tags          []string       `json:"tags"`
	QuotedMessage *QuotedMessage `json:"quoted_message"`
	ForwardedInfo *ForwardedInfo `json:"forwarded_info"`
}

// Empty reports whether the post carries nothing publishable. Empty posts
// are discarded and never reach a bucket.
func (p Post) Empty() bool {
	return p.Text == "" && len(p.Photos) == 0
}

// MediaAsset pairs a downloaded attachment's repository path (relative to
// the month folder) with its single-use local temporary file.
type MediaAsset struct {
	RemotePath string
	LocalPath  string
}
