package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
)

// DefaultExitWord ends the session when typed on its own (case-insensitive).
const DefaultExitWord = "exit"

// Runner handles the turn loop of a conversation using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// ThreadID is the thread to resume. Empty starts a new thread.
	ThreadID string

	// PendingRunID is a run to finish before the first turn.
	PendingRunID string

	// OnThread is invoked once the thread is resolved.
	OnThread func(context.Context, domain.Thread) error

	// ExitWord ends the session. Defaults to DefaultExitWord.
	ExitWord string

	threads ThreadEnsurer
	asker   Asker
}

// NewRunner creates a Runner over a conversation and an orchestrator.
func NewRunner(threads ThreadEnsurer, asker Asker, opts ...Option) *Runner {
	r := &Runner{
		threads:  threads,
		asker:    asker,
		Logger:   logging.NewNop(),
		ExitWord: DefaultExitWord,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes turns until the user exits, the input ends or ctx is cancelled.
// Errors of a single turn are reported to the user and do not end the session.
func (r *Runner) Run(ctx context.Context) error {
	handler := r.resolveHandler()

	thread, err := r.threads.EnsureThread(ctx, r.ThreadID)
	if err != nil {
		return fmt.Errorf("failed to resolve thread: %w", err)
	}
	r.Logger.Debug("session thread ready", "thread_id", thread.ID)
	if r.OnThread != nil {
		if err := r.OnThread(ctx, thread); err != nil {
			return err
		}
	}

	if r.PendingRunID != "" {
		if stop := r.resume(ctx, handler, thread); stop {
			return nil
		}
	}

	for {
		line, err := handler.Input(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				r.Logger.Debug("session input closed", "err", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		text := strings.TrimSpace(line)
		if r.isExit(text) {
			return nil
		}

		clean, err := conversation.Clean(text, 0)
		if err != nil {
			_ = handler.SystemOutput(ctx, "Error: "+err.Error())
			continue
		}

		reply, err := r.asker.Ask(ctx, thread, clean)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Logger.Debug("turn failed", "thread_id", thread.ID, "err", err)
			_ = handler.SystemOutput(ctx, "Error: "+err.Error())
			continue
		}
		if err := handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// resume finishes the pending run. It reports whether the session should stop.
func (r *Runner) resume(ctx context.Context, handler IOHandler, thread domain.Thread) bool {
	resumer, ok := r.asker.(Resumer)
	if !ok {
		r.Logger.Warn("pending run ignored, asker cannot resume", "run_id", r.PendingRunID)
		return false
	}
	r.Logger.Info("resuming pending run", "thread_id", thread.ID, "run_id", r.PendingRunID)
	reply, err := resumer.Resume(ctx, thread.ID, r.PendingRunID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		_ = handler.SystemOutput(ctx, "Error: "+err.Error())
		return false
	}
	_ = handler.Output(ctx, reply)
	return false
}

func (r *Runner) isExit(text string) bool {
	word := r.ExitWord
	if word == "" {
		word = DefaultExitWord
	}
	return text == "" || strings.EqualFold(text, word)
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new Pumps on subsequent Run() calls
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}
