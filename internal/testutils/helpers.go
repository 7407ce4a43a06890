package testutils

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/stretchr/testify/mock"
)

// MockRemote is a testify mock of ports.RemoteClient.
// Queue GetRun answers in order with .Once() to script a run lifecycle.
type MockRemote struct {
	mock.Mock
}

var _ ports.RemoteClient = (*MockRemote)(nil)

func (m *MockRemote) EnsureAssistant(ctx context.Context, cfg domain.AssistantConfig) (domain.Assistant, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(domain.Assistant), args.Error(1)
}

func (m *MockRemote) EnsureThread(ctx context.Context, id string) (domain.Thread, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Thread), args.Error(1)
}

func (m *MockRemote) AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (domain.Message, error) {
	args := m.Called(ctx, threadID, role, text)
	return args.Get(0).(domain.Message), args.Error(1)
}

func (m *MockRemote) CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error) {
	args := m.Called(ctx, threadID, assistantID)
	run, _ := args.Get(0).(*domain.Run)
	return run, args.Error(1)
}

func (m *MockRemote) GetRun(ctx context.Context, threadID, runID string) (*domain.Run, error) {
	args := m.Called(ctx, threadID, runID)
	run, _ := args.Get(0).(*domain.Run)
	return run, args.Error(1)
}

func (m *MockRemote) SubmitToolResults(ctx context.Context, threadID, runID string, results []domain.ToolResult) error {
	args := m.Called(ctx, threadID, runID, results)
	return args.Error(0)
}

func (m *MockRemote) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	args := m.Called(ctx, threadID)
	msgs, _ := args.Get(0).([]domain.Message)
	return msgs, args.Error(1)
}

func (m *MockRemote) CancelRun(ctx context.Context, threadID, runID string) error {
	args := m.Called(ctx, threadID, runID)
	return args.Error(0)
}

// RunWith builds a run snapshot for scripting GetRun answers.
func RunWith(id, threadID string, status domain.RunStatus, calls ...domain.ToolCall) *domain.Run {
	return &domain.Run{
		ID:             id,
		ThreadID:       threadID,
		Status:         status,
		RequiredAction: calls,
	}
}
