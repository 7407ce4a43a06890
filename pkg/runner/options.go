package runner

import (
	"context"
	"log/slog"

	"github.com/aretw0/relay/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithThreadID resumes an existing thread instead of starting a new one.
func WithThreadID(id string) Option {
	return func(r *Runner) {
		r.ThreadID = id
	}
}

// WithPendingRun drives a run left unfinished before the first turn.
// It requires the Asker to implement Resumer.
func WithPendingRun(runID string) Option {
	return func(r *Runner) {
		r.PendingRunID = runID
	}
}

// WithOnThread registers a callback invoked once the thread is known,
// e.g. to bookmark it in a session store.
func WithOnThread(fn func(context.Context, domain.Thread) error) Option {
	return func(r *Runner) {
		r.OnThread = fn
	}
}

// WithExitWord overrides the sentinel that ends the session (default "exit").
func WithExitWord(word string) Option {
	return func(r *Runner) {
		r.ExitWord = word
	}
}
