package ports

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
)

// RemoteClient is the remote assistant service consumed by the orchestration core.
// Implementations report transport or auth failures as errors matching
// domain.ErrRemoteUnavailable, and unknown threads as domain.ErrThreadNotFound.
type RemoteClient interface {
	// EnsureAssistant retrieves the assistant when cfg.ID is set, else creates one.
	EnsureAssistant(ctx context.Context, cfg domain.AssistantConfig) (domain.Assistant, error)

	// EnsureThread retrieves the thread when id is set, else creates one.
	EnsureThread(ctx context.Context, id string) (domain.Thread, error)

	// AppendMessage adds one message to the end of the thread.
	AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (domain.Message, error)

	// CreateRun starts a run of the assistant over the thread.
	CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error)

	// GetRun returns the current status of the run and its pending tool calls.
	GetRun(ctx context.Context, threadID, runID string) (*domain.Run, error)

	// SubmitToolResults answers every pending tool call of the run in one batch.
	SubmitToolResults(ctx context.Context, threadID, runID string, results []domain.ToolResult) error

	// ListMessages returns the thread messages, newest first.
	ListMessages(ctx context.Context, threadID string) ([]domain.Message, error)

	// CancelRun asks the remote to stop the run. Best effort.
	CancelRun(ctx context.Context, threadID, runID string) error
}
