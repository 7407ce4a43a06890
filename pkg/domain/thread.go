package domain

import "time"

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Thread is the identity of a conversation. The message history itself is
// retained by the remote service and is append-only.
type Thread struct {
	ID string `json:"id"`
}

// Message is a single immutable entry of a Thread.
type Message struct {
	ID        string    `json:"id,omitempty"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
