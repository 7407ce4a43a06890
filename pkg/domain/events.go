package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStarted EventType = "run_started"
	EventRunPolled  EventType = "run_polled"
	EventRunEnded   EventType = "run_ended"
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ThreadID  string    `json:"thread_id"`
	RunID     string    `json:"run_id"`
}

// RunEvent represents a run lifecycle step.
type RunEvent struct {
	EventBase
	Status RunStatus `json:"status"`
	Polls  int       `json:"polls,omitempty"`
	Err    error     `json:"-"`
}

// ToolEvent represents a tool execution.
type ToolEvent struct {
	EventBase
	CallID   string        `json:"call_id"`
	ToolName string        `json:"tool_name"`
	Duration time.Duration `json:"duration,omitempty"`
	Cached   bool          `json:"cached,omitempty"` // Result reused from the answered-call ledger
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnRunStarted func(context.Context, *RunEvent)
	OnRunPolled  func(context.Context, *RunEvent)
	OnRunEnded   func(context.Context, *RunEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}

// ChainHooks returns hooks that invoke every given set in order.
func ChainHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStarted: func(ctx context.Context, e *RunEvent) {
			for _, h := range all {
				if h.OnRunStarted != nil {
					h.OnRunStarted(ctx, e)
				}
			}
		},
		OnRunPolled: func(ctx context.Context, e *RunEvent) {
			for _, h := range all {
				if h.OnRunPolled != nil {
					h.OnRunPolled(ctx, e)
				}
			}
		},
		OnRunEnded: func(ctx context.Context, e *RunEvent) {
			for _, h := range all {
				if h.OnRunEnded != nil {
					h.OnRunEnded(ctx, e)
				}
			}
		},
		OnToolCall: func(ctx context.Context, e *ToolEvent) {
			for _, h := range all {
				if h.OnToolCall != nil {
					h.OnToolCall(ctx, e)
				}
			}
		},
		OnToolReturn: func(ctx context.Context, e *ToolEvent) {
			for _, h := range all {
				if h.OnToolReturn != nil {
					h.OnToolReturn(ctx, e)
				}
			}
		},
	}
}
