package relay_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/relay"
	"github.com/aretw0/relay/internal/testutils"
	"github.com/aretw0/relay/pkg/adapters/memory"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/orchestrator"
	"github.com/aretw0/relay/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type nicknameArgs struct {
	Location string `json:"location"`
}

func nicknames() *registry.Registry {
	r := registry.New()
	r.MustRegister(domain.Tool{
		Name:       "getNickname",
		Parameters: registry.Object(map[string]any{"location": registry.String("City name")}, "location"),
	}, registry.Func(func(ctx context.Context, args nicknameArgs) (string, error) {
		if args.Location == "Chicago" {
			return "The Windy City", nil
		}
		return "unknown", nil
	}))
	return r
}

func fastPolling() relay.Option {
	return relay.WithConfig(orchestrator.Config{PollInterval: time.Millisecond})
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(relay.Version))
}

func TestNew_AdvertisesTools(t *testing.T) {
	remote := &testutils.MockRemote{}
	remote.On("EnsureAssistant", mock.Anything, mock.MatchedBy(func(cfg domain.AssistantConfig) bool {
		return cfg.Name == "Nicknames" && len(cfg.Tools) == 1 && cfg.Tools[0].Name == "getNickname"
	})).Return(domain.Assistant{ID: "asst_1"}, nil)

	client, err := relay.New(context.Background(), remote,
		relay.WithRegistry(nicknames()),
		relay.WithAssistant(domain.AssistantConfig{Name: "Nicknames"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "asst_1", client.AssistantID())
	assert.Len(t, client.Tools(), 1)
	remote.AssertExpectations(t)
}

func TestNew_AssistantFailure(t *testing.T) {
	remote := &testutils.MockRemote{}
	remote.On("EnsureAssistant", mock.Anything, mock.Anything).
		Return(domain.Assistant{}, domain.Remote("assistant", errors.New("boom")))

	_, err := relay.New(context.Background(), remote)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestClient_Ask(t *testing.T) {
	remote := &testutils.MockRemote{}
	remote.On("EnsureAssistant", mock.Anything, mock.Anything).Return(domain.Assistant{ID: "asst_1"}, nil)
	remote.On("EnsureThread", mock.Anything, "").Return(domain.Thread{ID: "thread_1"}, nil)
	remote.On("AppendMessage", mock.Anything, "thread_1", domain.RoleUser, "What's the nickname of Chicago?").
		Return(domain.Message{ID: "msg_1", Role: domain.RoleUser}, nil)
	remote.On("CreateRun", mock.Anything, "thread_1", "asst_1").
		Return(testutils.RunWith("run_1", "thread_1", domain.StatusQueued), nil)
	remote.On("GetRun", mock.Anything, "thread_1", "run_1").
		Return(testutils.RunWith("run_1", "thread_1", domain.StatusNeedsAction,
			domain.ToolCall{ID: "call_1", Name: "getNickname", Raw: `{"location":"Chicago"}`},
		), nil).Once()
	remote.On("SubmitToolResults", mock.Anything, "thread_1", "run_1", []domain.ToolResult{
		{CallID: "call_1", Output: "The Windy City"},
	}).Return(nil).Once()
	remote.On("GetRun", mock.Anything, "thread_1", "run_1").
		Return(testutils.RunWith("run_1", "thread_1", domain.StatusCompleted), nil)
	remote.On("ListMessages", mock.Anything, "thread_1").Return([]domain.Message{
		{ID: "msg_2", Role: domain.RoleAssistant, Content: "Chicago is The Windy City."},
	}, nil)

	ctx := context.Background()
	client, err := relay.New(ctx, remote,
		relay.WithRegistry(nicknames()),
		relay.WithLedger(memory.NewLedger()),
		fastPolling(),
	)
	require.NoError(t, err)

	thread, err := client.NewThread(ctx)
	require.NoError(t, err)

	reply, err := client.Ask(ctx, thread, "What's the nickname of Chicago?")
	require.NoError(t, err)
	assert.Equal(t, "Chicago is The Windy City.", reply)
	remote.AssertExpectations(t)
}

func TestClient_AskEmptyMessage(t *testing.T) {
	remote := &testutils.MockRemote{}
	remote.On("EnsureAssistant", mock.Anything, mock.Anything).Return(domain.Assistant{ID: "asst_1"}, nil)

	client, err := relay.New(context.Background(), remote, fastPolling())
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), domain.Thread{ID: "thread_1"}, "")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	remote.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything, mock.Anything)
}
