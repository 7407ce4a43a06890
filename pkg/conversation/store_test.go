package conversation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/relay/internal/testutils"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureThread_CreatesWhenEmpty(t *testing.T) {
	remote := new(testutils.MockRemote)
	remote.On("EnsureThread", mock.Anything, "").Return(domain.Thread{ID: "thread_new"}, nil).Once()

	thread, err := conversation.New(remote).EnsureThread(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "thread_new", thread.ID)
	remote.AssertExpectations(t)
}

func TestEnsureThread_Idempotent(t *testing.T) {
	remote := new(testutils.MockRemote)
	remote.On("EnsureThread", mock.Anything, "thread_1").Return(domain.Thread{ID: "thread_1"}, nil).Twice()

	store := conversation.New(remote)
	first, err := store.EnsureThread(context.Background(), "thread_1")
	require.NoError(t, err)
	second, err := store.EnsureThread(context.Background(), "thread_1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	remote.AssertExpectations(t)
	remote.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureThread_FallsBackWhenNotFound(t *testing.T) {
	remote := new(testutils.MockRemote)
	remote.On("EnsureThread", mock.Anything, "thread_gone").Return(domain.Thread{}, domain.ErrThreadNotFound).Once()
	remote.On("EnsureThread", mock.Anything, "").Return(domain.Thread{ID: "thread_new"}, nil).Once()

	thread, err := conversation.New(remote).EnsureThread(context.Background(), "thread_gone")
	require.NoError(t, err)
	assert.Equal(t, "thread_new", thread.ID)
}

func TestEnsureThread_RemoteFailure(t *testing.T) {
	remote := new(testutils.MockRemote)
	remote.On("EnsureThread", mock.Anything, "thread_1").Return(domain.Thread{}, errors.New("401 unauthorized")).Once()

	_, err := conversation.New(remote).EnsureThread(context.Background(), "thread_1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestAppendUserMessage(t *testing.T) {
	thread := domain.Thread{ID: "thread_1"}

	t.Run("rejects blank text", func(t *testing.T) {
		remote := new(testutils.MockRemote)
		_, err := conversation.New(remote).AppendUserMessage(context.Background(), thread, "  \n\t")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
		remote.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects text over the configured length", func(t *testing.T) {
		remote := new(testutils.MockRemote)
		store := conversation.New(remote, conversation.WithMaxMessageLength(5))
		_, err := store.AppendUserMessage(context.Background(), thread, "too long")
		assert.ErrorIs(t, err, domain.ErrMessageTooLong)
		remote.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("appends cleaned text", func(t *testing.T) {
		remote := new(testutils.MockRemote)
		remote.On("AppendMessage", mock.Anything, "thread_1", domain.RoleUser, "Red alert").
			Return(domain.Message{ID: "msg_1"}, nil).Once()

		_, err := conversation.New(remote).AppendUserMessage(context.Background(), thread, " \x1b[31mRed\x1b[0m alert\n")
		require.NoError(t, err)
		remote.AssertExpectations(t)
	})

	t.Run("appends exactly once", func(t *testing.T) {
		remote := new(testutils.MockRemote)
		want := domain.Message{ID: "msg_1", ThreadID: "thread_1", Role: domain.RoleUser, Content: "hi"}
		remote.On("AppendMessage", mock.Anything, "thread_1", domain.RoleUser, "hi").Return(want, nil).Once()

		got, err := conversation.New(remote).AppendUserMessage(context.Background(), thread, "hi")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		remote.AssertNumberOfCalls(t, "AppendMessage", 1)
	})

	t.Run("wraps remote failure", func(t *testing.T) {
		remote := new(testutils.MockRemote)
		remote.On("AppendMessage", mock.Anything, "thread_1", domain.RoleUser, "hi").
			Return(domain.Message{}, errors.New("connection reset")).Once()

		_, err := conversation.New(remote).AppendUserMessage(context.Background(), thread, "hi")
		var remoteErr *domain.RemoteUnavailableError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, "append message", remoteErr.Op)
	})
}

func TestAppendUserMessage_SerializedPerThread(t *testing.T) {
	remote := new(testutils.MockRemote)
	var inflight, overlap int32
	remote.On("AppendMessage", mock.Anything, "thread_1", domain.RoleUser, mock.Anything).
		Run(func(args mock.Arguments) {
			if atomic.AddInt32(&inflight, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inflight, -1)
		}).
		Return(domain.Message{}, nil)

	store := conversation.New(remote)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AppendUserMessage(context.Background(), domain.Thread{ID: "thread_1"}, "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
	remote.AssertNumberOfCalls(t, "AppendMessage", 8)
}

func TestNewestMessage(t *testing.T) {
	remote := new(testutils.MockRemote)
	remote.On("ListMessages", mock.Anything, "thread_1").Return([]domain.Message{
		{ID: "msg_2", Role: domain.RoleAssistant, Content: "The weather in Chicago is 64 degrees."},
		{ID: "msg_1", Role: domain.RoleUser, Content: "What's the weather in Chicago?"},
	}, nil).Once()
	remote.On("ListMessages", mock.Anything, "thread_empty").Return([]domain.Message{}, nil).Once()

	store := conversation.New(remote)

	msg, err := store.NewestMessage(context.Background(), "thread_1")
	require.NoError(t, err)
	assert.Equal(t, "msg_2", msg.ID)

	_, err = store.NewestMessage(context.Background(), "thread_empty")
	assert.ErrorIs(t, err, domain.ErrNoMessages)
}
