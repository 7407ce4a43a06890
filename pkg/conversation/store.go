package conversation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/aretw0/relay/pkg/session"
)

// Store owns thread identity and the append-only message flow of a conversation.
// Message history itself stays on the remote.
type Store struct {
	remote ports.RemoteClient
	locks  *session.Locks
	maxLen int
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLocks shares the keyed locks used to serialize appends per thread.
func WithLocks(locks *session.Locks) Option {
	return func(s *Store) {
		s.locks = locks
	}
}

// WithMaxMessageLength caps user messages, in characters. Zero keeps MaxMessageLength.
func WithMaxMessageLength(n int) Option {
	return func(s *Store) {
		s.maxLen = n
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a conversation store over the remote client.
func New(remote ports.RemoteClient, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = session.NewLocks(session.WithLocksLogger(s.logger))
	}
	return s
}

// EnsureThread returns the thread identified by existingID, or a fresh one when
// existingID is empty or unknown to the remote.
func (s *Store) EnsureThread(ctx context.Context, existingID string) (domain.Thread, error) {
	if existingID != "" {
		thread, err := s.remote.EnsureThread(ctx, existingID)
		if err == nil {
			return thread, nil
		}
		if !errors.Is(err, domain.ErrThreadNotFound) {
			return domain.Thread{}, domain.Remote("retrieve thread", err)
		}
		s.logger.Warn("thread not found, starting a new one", "thread_id", existingID)
	}

	thread, err := s.remote.EnsureThread(ctx, "")
	if err != nil {
		return domain.Thread{}, domain.Remote("create thread", err)
	}
	s.logger.Debug("thread created", "thread_id", thread.ID)
	return thread, nil
}

// AppendUserMessage cleans text (see Clean) and adds it to the end of the thread.
// Concurrent appends to the same thread are serialized.
func (s *Store) AppendUserMessage(ctx context.Context, thread domain.Thread, text string) (domain.Message, error) {
	text, err := Clean(text, s.maxLen)
	if err != nil {
		return domain.Message{}, err
	}

	var msg domain.Message
	err = s.locks.WithLock(ctx, thread.ID, func(ctx context.Context) error {
		var err error
		msg, err = s.remote.AppendMessage(ctx, thread.ID, domain.RoleUser, text)
		return domain.Remote("append message", err)
	})
	return msg, err
}

// NewestMessage returns the most recent message of the thread.
func (s *Store) NewestMessage(ctx context.Context, threadID string) (domain.Message, error) {
	msgs, err := s.remote.ListMessages(ctx, threadID)
	if err != nil {
		return domain.Message{}, domain.Remote("list messages", err)
	}
	if len(msgs) == 0 {
		return domain.Message{}, domain.ErrNoMessages
	}
	return msgs[0], nil
}
