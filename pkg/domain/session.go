package domain

import "time"

// Session is the local bookmark of a conversation.
// It never stores message history, only the identities needed to resume it.
type Session struct {
	ID          string `json:"id" yaml:"id"`
	AssistantID string `json:"assistant_id,omitempty" yaml:"assistant_id,omitempty"`
	ThreadID    string `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`

	// ActiveRunID is the run currently being driven on ThreadID (empty when idle).
	ActiveRunID string `json:"active_run_id,omitempty" yaml:"active_run_id,omitempty"`

	// Answered holds the results already produced for ActiveRunID, keyed by call ID.
	Answered map[string]ToolResult `json:"answered,omitempty" yaml:"answered,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewSession creates an empty session record.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Answered:  make(map[string]ToolResult),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Answered = make(map[string]ToolResult, len(s.Answered))
	for k, v := range s.Answered {
		cp.Answered[k] = v
	}
	return &cp
}
