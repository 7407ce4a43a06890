package runner

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads one line from the user.
	Input(ctx context.Context) (string, error)

	// Output presents an assistant reply.
	Output(ctx context.Context, reply string) error

	// SystemOutput presents a meta-message to the user (e.g. run status, errors).
	// This is distinct from reply rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ThreadEnsurer resolves the thread a session talks on.
type ThreadEnsurer interface {
	EnsureThread(ctx context.Context, existingID string) (domain.Thread, error)
}

// Asker runs one turn of the conversation.
type Asker interface {
	Ask(ctx context.Context, thread domain.Thread, text string) (string, error)
}

// Resumer continues a run left unfinished by a previous process.
type Resumer interface {
	Resume(ctx context.Context, threadID, runID string) (string, error)
}

// ContentRenderer is a function that transforms the reply before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// StatusHooks echoes every poll of a run through the handler's system output.
func StatusHooks(h IOHandler) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunPolled: func(ctx context.Context, e *domain.RunEvent) {
			_ = h.SystemOutput(ctx, "- Run status: "+e.Status.String())
		},
	}
}
