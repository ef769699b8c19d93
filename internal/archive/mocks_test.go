package archive

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"channel-archive/internal/source"
)

// --- Mocks ---

// MockClient is a mock implementing the source.Client interface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ResolveChannel(ctx context.Context, username string) (source.ChannelRef, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(source.ChannelRef), args.Error(1)
}

func (m *MockClient) Messages(ctx context.Context, ch source.ChannelRef, offsetDate time.Time) source.MessageIter {
	args := m.Called(ctx, ch, offsetDate)
	return args.Get(0).(source.MessageIter)
}

func (m *MockClient) DownloadMedia(ctx context.Context, msg source.Message, filename string) (string, error) {
	args := m.Called(ctx, msg, filename)
	return args.String(0), args.Error(1)
}

func (m *MockClient) ReplyMessage(ctx context.Context, ch source.ChannelRef, msg source.Message) (*source.Message, error) {
	args := m.Called(ctx, ch, msg)
	if replied, ok := args.Get(0).(*source.Message); ok {
		return replied, args.Error(1)
	}
	return nil, args.Error(1)
}

// sliceIter serves a fixed message slice through the MessageIter contract.
type sliceIter struct {
	messages []source.Message
	pos      int
	err      error
}

func (it *sliceIter) Next(ctx context.Context) bool {
	if it.pos >= len(it.messages) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIter) Message() source.Message { return it.messages[it.pos-1] }

func (it *sliceIter) Err() error { return it.err }
