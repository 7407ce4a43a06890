package runner_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ScriptedHandler replays input lines and captures everything written.
type ScriptedHandler struct {
	mu      sync.Mutex
	lines   []string
	replies []string
	system  []string
}

func (h *ScriptedHandler) Input(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.lines) == 0 {
		return "", io.EOF
	}
	line := h.lines[0]
	h.lines = h.lines[1:]
	return line, nil
}

func (h *ScriptedHandler) Output(ctx context.Context, reply string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replies = append(h.replies, reply)
	return nil
}

func (h *ScriptedHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.system = append(h.system, msg)
	return nil
}

type MockConversation struct {
	mock.Mock
}

func (m *MockConversation) EnsureThread(ctx context.Context, existingID string) (domain.Thread, error) {
	args := m.Called(ctx, existingID)
	return args.Get(0).(domain.Thread), args.Error(1)
}

type MockAsker struct {
	mock.Mock
}

func (m *MockAsker) Ask(ctx context.Context, thread domain.Thread, text string) (string, error) {
	args := m.Called(ctx, thread, text)
	return args.String(0), args.Error(1)
}

type MockResumer struct {
	MockAsker
}

func (m *MockResumer) Resume(ctx context.Context, threadID, runID string) (string, error) {
	args := m.Called(ctx, threadID, runID)
	return args.String(0), args.Error(1)
}

var thread = domain.Thread{ID: "thread_1"}

func newConversation(existing string) *MockConversation {
	conv := new(MockConversation)
	conv.On("EnsureThread", mock.Anything, existing).Return(thread, nil).Once()
	return conv
}

func TestRunner_TurnsUntilExit(t *testing.T) {
	handler := &ScriptedHandler{lines: []string{"What's the weather in Chicago?", "  EXIT  ", "never read"}}
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, thread, "What's the weather in Chicago?").Return("It is 64 degrees.", nil).Once()

	err := runner.NewRunner(newConversation(""), asker, runner.WithInputHandler(handler)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"It is 64 degrees."}, handler.replies)
	assert.Equal(t, []string{"never read"}, handler.lines)
	asker.AssertExpectations(t)
}

func TestRunner_EmptyLineEndsSession(t *testing.T) {
	handler := &ScriptedHandler{lines: []string{"   ", "hello"}}
	asker := new(MockAsker)

	err := runner.NewRunner(newConversation(""), asker, runner.WithInputHandler(handler)).Run(context.Background())

	require.NoError(t, err)
	asker.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_ErrorDoesNotEndSession(t *testing.T) {
	handler := &ScriptedHandler{lines: []string{"price of AAPL", "nickname of Paris"}}
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, thread, "price of AAPL").
		Return("", &domain.UnsupportedToolError{Name: "getStockPrice"}).Once()
	asker.On("Ask", mock.Anything, thread, "nickname of Paris").Return("The City of Light", nil).Once()

	err := runner.NewRunner(newConversation(""), asker, runner.WithInputHandler(handler)).Run(context.Background())

	require.NoError(t, err, "EOF ends the session cleanly")
	assert.Equal(t, []string{`Error: unsupported tool: "getStockPrice"`}, handler.system)
	assert.Equal(t, []string{"The City of Light"}, handler.replies)
}

func TestRunner_CleansInput(t *testing.T) {
	handler := &ScriptedHandler{lines: []string{"\x1b[1mDing\x07 dong\x1b[0m", "\x1b[0m\x07", "\xff"}}
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, thread, "Ding dong").Return("ok", nil).Once()

	err := runner.NewRunner(newConversation(""), asker, runner.WithInputHandler(handler)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, handler.replies)
	assert.Equal(t, []string{
		"Error: " + domain.ErrEmptyMessage.Error(),
		"Error: " + domain.ErrMessageEncoding.Error(),
	}, handler.system)
	asker.AssertExpectations(t)
}

func TestRunner_ResumesThreadAndBookmarks(t *testing.T) {
	handler := &ScriptedHandler{}
	var bookmarked string

	r := runner.NewRunner(newConversation("thread_1"), new(MockAsker),
		runner.WithInputHandler(handler),
		runner.WithThreadID("thread_1"),
		runner.WithOnThread(func(ctx context.Context, th domain.Thread) error {
			bookmarked = th.ID
			return nil
		}),
	)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, "thread_1", bookmarked)
}

func TestRunner_PendingRun(t *testing.T) {
	handler := &ScriptedHandler{}
	asker := new(MockResumer)
	asker.On("Resume", mock.Anything, "thread_1", "run_9").Return("finished earlier work", nil).Once()

	r := runner.NewRunner(newConversation(""), asker,
		runner.WithInputHandler(handler),
		runner.WithPendingRun("run_9"),
	)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"finished earlier work"}, handler.replies)
}

func TestRunner_ThreadFailure(t *testing.T) {
	conv := new(MockConversation)
	conv.On("EnsureThread", mock.Anything, "").Return(domain.Thread{}, domain.ErrRemoteUnavailable).Once()

	err := runner.NewRunner(conv, new(MockAsker), runner.WithInputHandler(&ScriptedHandler{})).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

// blockingHandler never yields input until ctx is done.
type blockingHandler struct{ ScriptedHandler }

func (h *blockingHandler) Input(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRunner_CancellationEndsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := runner.NewRunner(newConversation(""), new(MockAsker), runner.WithInputHandler(&blockingHandler{}))

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Runner hung")
	}
}

func TestRunner_InputError(t *testing.T) {
	r := runner.NewRunner(newConversation(""), new(MockAsker), runner.WithInputHandler(&failingHandler{}))
	err := r.Run(context.Background())
	assert.ErrorContains(t, err, "input error")
}

type failingHandler struct{ ScriptedHandler }

func (h *failingHandler) Input(ctx context.Context) (string, error) {
	return "", errors.New("terminal gone")
}

func TestStatusHooks(t *testing.T) {
	handler := &ScriptedHandler{}
	hooks := runner.StatusHooks(handler)

	hooks.OnRunPolled(context.Background(), &domain.RunEvent{Status: domain.StatusInProgress})

	assert.Equal(t, []string{"- Run status: in_progress"}, handler.system)
}
