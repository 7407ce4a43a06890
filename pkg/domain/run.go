package domain

// RunStatus is the lifecycle label of a Run as reported by the remote service.
type RunStatus string

const (
	StatusQueued      RunStatus = "queued"       // Accepted, not started yet
	StatusInProgress  RunStatus = "in_progress"  // Remote is working
	StatusNeedsAction RunStatus = "needs_action" // Remote is paused, waiting for tool results
	StatusCompleted   RunStatus = "completed"    // Sink state, reply available
	StatusFailed      RunStatus = "failed"       // Sink state
	StatusCancelled   RunStatus = "cancelled"    // Sink state
	StatusExpired     RunStatus = "expired"      // Sink state
)

// IsTerminal reports whether no further transition can happen.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsAbnormal reports whether the status is terminal without a reply.
func (s RunStatus) IsAbnormal() bool {
	return s.IsTerminal() && s != StatusCompleted
}

func (s RunStatus) String() string { return string(s) }

// Run represents one asynchronous unit of remote work over a Thread.
type Run struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id,omitempty"`
	Status      RunStatus `json:"status"`

	// RequiredAction holds the ordered tool calls when Status == StatusNeedsAction.
	RequiredAction []ToolCall `json:"required_action,omitempty"`

	// LastError carries the remote diagnosis of an abnormal termination, if any.
	LastError string `json:"last_error,omitempty"`
}

// NeedsAction reports whether the run is paused on local tool calls.
func (r *Run) NeedsAction() bool {
	return r.Status == StatusNeedsAction
}
