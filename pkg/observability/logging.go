package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/relay/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one structured line per event.
// Polls are logged at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStarted: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_started", "thread_id", e.ThreadID, "run_id", e.RunID, "status", e.Status)
		},
		OnRunPolled: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run_polled", "thread_id", e.ThreadID, "run_id", e.RunID, "status", e.Status, "polls", e.Polls)
		},
		OnRunEnded: func(ctx context.Context, e *domain.RunEvent) {
			attrs := []any{"thread_id", e.ThreadID, "run_id", e.RunID, "status", e.Status, "polls", e.Polls, "outcome", RunOutcome(e)}
			if e.Err != nil {
				logger.WarnContext(ctx, "run_ended", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "run_ended", attrs...)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.DebugContext(ctx, "tool_call", "run_id", e.RunID, "tool", e.ToolName, "call_id", e.CallID)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			attrs := []any{"run_id", e.RunID, "tool", e.ToolName, "call_id", e.CallID, "duration", e.Duration, "cached", e.Cached}
			if e.Err != nil {
				logger.WarnContext(ctx, "tool_return", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "tool_return", attrs...)
		},
	}
}
