package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"channel-archive/internal/source"
)

func TestNewPipeline(t *testing.T) {
	t.Run("NilClient", func(t *testing.T) {
		_, err := NewPipeline(nil, "chan", 7, time.UTC)
		assert.Error(t, err)
	})

	t.Run("EmptyHandle", func(t *testing.T) {
		_, err := NewPipeline(new(MockClient), "", 7, time.UTC)
		assert.Error(t, err)
	})

	t.Run("NilLocation", func(t *testing.T) {
		_, err := NewPipeline(new(MockClient), "chan", 7, nil)
		assert.Error(t, err)
	})

	t.Run("DayLimitDefaulted", func(t *testing.T) {
		p, err := NewPipeline(new(MockClient), "chan", 0, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, DefaultDayLimit, p.dayLimit)
	})
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("AssemblesAndBucketsPosts", func(t *testing.T) {
		// Arrange
		mockClient := new(MockClient)
		pipeline, err := NewPipeline(mockClient, "testchannel", 7, time.UTC)
		require.NoError(t, err)

		iter := &sliceIter{messages: []source.Message{
			{ID: 1, Date: now.Add(-48 * time.Hour), Text: "hello\n#go"},
			{ID: 2, Date: now.Add(-24 * time.Hour), Text: "#skip"},
		}}
		mockClient.On("ResolveChannel", ctx, "testchannel").Return(testChannel, nil).Once()
		mockClient.On("Messages", ctx, testChannel, mock.AnythingOfType("time.Time")).
			Return(source.MessageIter(iter)).Once()

		// Act
		updates, err := pipeline.Run(ctx, now)

		// Assert
		require.NoError(t, err)
		mockClient.AssertExpectations(t)

		require.Equal(t, []string{"2024-03"}, updates.Months())
		posts := updates["2024-03"].Content["2024-03-13"]
		require.Len(t, posts, 1, "tags-only post is discarded")
		assert.Equal(t, "hello", posts[0].Text)
		assert.Equal(t, []string{"go"}, posts[0].Tags)
	})

	t.Run("ResolveChannelError", func(t *testing.T) {
		mockClient := new(MockClient)
		pipeline, err := NewPipeline(mockClient, "testchannel", 7, time.UTC)
		require.NoError(t, err)

		mockClient.On("ResolveChannel", ctx, "testchannel").
			Return(source.ChannelRef{}, errors.New("username not occupied")).Once()

		_, err = pipeline.Run(ctx, now)

		assert.ErrorContains(t, err, "resolve channel testchannel")
	})

	t.Run("IteratorError", func(t *testing.T) {
		mockClient := new(MockClient)
		pipeline, err := NewPipeline(mockClient, "testchannel", 7, time.UTC)
		require.NoError(t, err)

		iterErr := errors.New("connection reset")
		mockClient.On("ResolveChannel", ctx, "testchannel").Return(testChannel, nil).Once()
		mockClient.On("Messages", ctx, testChannel, mock.AnythingOfType("time.Time")).
			Return(source.MessageIter(&sliceIter{err: iterErr})).Once()

		_, err = pipeline.Run(ctx, now)

		assert.ErrorIs(t, err, iterErr)
	})

	t.Run("AbortRemovesEarlierGroupsMedia", func(t *testing.T) {
		mockClient := new(MockClient)
		pipeline, err := NewPipeline(mockClient, "testchannel", 7, time.UTC)
		require.NoError(t, err)

		okMsg := source.Message{
			ID: 1, Date: now.Add(-48 * time.Hour),
			Media: &source.Media{FileName: "photo.jpg"},
		}
		failMsg := source.Message{
			ID: 2, Date: now.Add(-24 * time.Hour),
			Media: &source.Media{FileName: "photo.jpg"},
		}
		localPath := writeTestPNG(t, t.TempDir(), MediaFilename(okMsg, "photo.jpg"), 10, 10)

		mockClient.On("ResolveChannel", ctx, "testchannel").Return(testChannel, nil).Once()
		mockClient.On("Messages", ctx, testChannel, mock.AnythingOfType("time.Time")).
			Return(source.MessageIter(&sliceIter{messages: []source.Message{okMsg, failMsg}})).Once()
		mockClient.On("DownloadMedia", ctx, okMsg, MediaFilename(okMsg, "photo.jpg")).
			Return(localPath, nil).Once()
		mockClient.On("DownloadMedia", ctx, failMsg, MediaFilename(failMsg, "photo.jpg")).
			Return("", errors.New("flood wait")).Once()

		_, err = pipeline.Run(ctx, now)

		assert.Error(t, err)
		assert.NoFileExists(t, localPath, "earlier group's temporary media is removed when the run aborts")
	})

	t.Run("AssemblyErrorRemovesDownloadedMedia", func(t *testing.T) {
		mockClient := new(MockClient)
		pipeline, err := NewPipeline(mockClient, "testchannel", 7, time.UTC)
		require.NoError(t, err)

		okMsg := source.Message{
			ID: 3, Date: now.Add(-24 * time.Hour), GroupedID: 5,
			Media: &source.Media{FileName: "photo.jpg"},
		}
		failMsg := source.Message{
			ID: 4, Date: now.Add(-24*time.Hour + time.Second), GroupedID: 5,
			Media: &source.Media{FileName: "photo.jpg"},
		}
		localPath := writeTestPNG(t, t.TempDir(), MediaFilename(okMsg, "photo.jpg"), 10, 10)

		mockClient.On("ResolveChannel", ctx, "testchannel").Return(testChannel, nil).Once()
		mockClient.On("Messages", ctx, testChannel, mock.AnythingOfType("time.Time")).
			Return(source.MessageIter(&sliceIter{messages: []source.Message{okMsg, failMsg}})).Once()
		mockClient.On("DownloadMedia", ctx, okMsg, MediaFilename(okMsg, "photo.jpg")).
			Return(localPath, nil).Once()
		mockClient.On("DownloadMedia", ctx, failMsg, MediaFilename(failMsg, "photo.jpg")).
			Return("", errors.New("flood wait")).Once()

		_, err = pipeline.Run(ctx, now)

		assert.Error(t, err)
		assert.NoFileExists(t, localPath, "aborted run leaves no temporary files")
	})
}
