package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"

	"channel-archive/internal/source"
)

// historyBatch is the page size for history requests; 100 is the API
// maximum for messages.getHistory.
const historyBatch = 100

// historyIter pages through channel history chronologically ascending,
// mirroring the offset-date seeded reverse iteration of the upstream
// client: each request asks for the page immediately newer than the
// current offset and the page is flipped to ascending order locally.
type historyIter struct {
	api  *tg.Client
	peer *tg.InputPeerChannel

	offsetID   int
	offsetDate int

	batch     []source.Message
	pos       int
	cur       source.Message
	exhausted bool
	err       error
}

func (it *historyIter) Next(ctx context.Context) bool {
	for {
		if it.err != nil {
			return false
		}
		if it.pos < len(it.batch) {
			it.cur = it.batch[it.pos]
			it.pos++
			return true
		}
		if it.exhausted {
			return false
		}
		it.fetch(ctx)
	}
}

func (it *historyIter) Message() source.Message { return it.cur }

func (it *historyIter) Err() error { return it.err }

// fetch loads the next page into it.batch and advances the offsets.
func (it *historyIter) fetch(ctx context.Context) {
	result, err := it.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:       it.peer,
		OffsetID:   it.offsetID,
		OffsetDate: it.offsetDate,
		AddOffset:  -historyBatch,
		Limit:      historyBatch,
	})
	if err != nil {
		it.err = fmt.Errorf("get history: %w", err)
		return
	}

	raw, err := rawMessages(result)
	if err != nil {
		it.err = err
		return
	}
	if len(raw) < historyBatch {
		it.exhausted = true
	}

	// The API returns pages newest first; flip to ascending and drop
	// service messages.
	batch := make([]source.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		if msg, ok := raw[i].(*tg.Message); ok {
			batch = append(batch, convertMessage(msg))
		}
	}
	it.batch = batch
	it.pos = 0

	if len(batch) > 0 {
		it.offsetID = int(batch[len(batch)-1].ID) + 1
		it.offsetDate = 0
	} else if !it.exhausted {
		// A page of nothing but service messages; keep paging.
		it.advancePastServicePage(raw)
	}
}

// advancePastServicePage moves the offset beyond a page that contained no
// regular messages so iteration cannot loop on it.
func (it *historyIter) advancePastServicePage(raw []tg.MessageClass) {
	highest := it.offsetID
	for _, m := range raw {
		if id, ok := messageID(m); ok && id+1 > highest {
			highest = id + 1
		}
	}
	if highest == it.offsetID {
		it.exhausted = true
		return
	}
	it.offsetID = highest
	it.offsetDate = 0
}

func rawMessages(result tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch messages := result.(type) {
	case *tg.MessagesChannelMessages:
		return messages.Messages, nil
	case *tg.MessagesMessages:
		return messages.Messages, nil
	case *tg.MessagesMessagesSlice:
		return messages.Messages, nil
	default:
		return nil, fmt.Errorf("unexpected history response type %T", result)
	}
}

func messageID(m tg.MessageClass) (int, bool) {
	switch msg := m.(type) {
	case *tg.Message:
		return msg.ID, true
	case *tg.MessageService:
		return msg.ID, true
	case *tg.MessageEmpty:
		return msg.ID, true
	default:
		return 0, false
	}
}
