package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/relay/internal/config"
	"github.com/aretw0/relay/internal/presentation/tui"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/aretw0/relay/pkg/runner"
	"golang.org/x/term"
)

// ChatOptions configures an interactive session.
type ChatOptions struct {
	ThreadID  string
	SessionID string
	JSON      bool
	Render    bool
	Confirm   bool

	In  io.Reader
	Out io.Writer

	// Remote replaces the OpenAI client.
	Remote ports.RemoteClient
}

// RunChat runs the session loop until the user exits or ctx is cancelled.
func RunChat(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	handler, err := newHandler(opts)
	if err != nil {
		return err
	}

	buildOpts := Options{
		SessionID: opts.SessionID,
		Remote:    opts.Remote,
		Hooks:     runner.StatusHooks(handler),
	}
	if opts.Confirm {
		buildOpts.Interceptor = runner.ConfirmationMiddleware(handler)
	}

	app, err := Build(ctx, cfg, logger, buildOpts)
	if err != nil {
		return err
	}
	defer app.Close()

	threadID := opts.ThreadID
	if threadID == "" {
		threadID = cfg.ThreadID
	}
	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	}

	if opts.SessionID != "" {
		sess, err := app.Sessions.LoadOrCreate(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if threadID == "" {
			threadID = sess.ThreadID
		}
		if sess.ActiveRunID != "" && sess.ThreadID == threadID {
			runnerOpts = append(runnerOpts, runner.WithPendingRun(sess.ActiveRunID))
		}
		if !opts.JSON {
			printSystemMessage(opts.Out, "Session '%s' active.", sess.ID)
		}
		runnerOpts = append(runnerOpts, runner.WithOnThread(bookmark(app, opts.SessionID)))
	}
	runnerOpts = append(runnerOpts, runner.WithThreadID(threadID))

	r := runner.NewRunner(app.Conversation, app.Orchestrator, runnerOpts...)
	return handleExecutionError(r.Run(ctx))
}

func newHandler(opts ChatOptions) (runner.IOHandler, error) {
	if opts.JSON {
		return runner.NewJSONHandler(opts.In, opts.Out), nil
	}

	var textOpts []runner.TextHandlerOption
	if opts.Render {
		render, err := tui.NewRenderer()
		if err != nil {
			return nil, err
		}
		textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
	}
	if f, ok := opts.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tui.PrintBanner(opts.Out)
	}
	return runner.NewTextHandler(opts.In, opts.Out, textOpts...), nil
}

// bookmark records the thread of the session so a later chat can resume it.
func bookmark(app *App, sessionID string) func(context.Context, domain.Thread) error {
	return func(ctx context.Context, thread domain.Thread) error {
		_, err := app.Sessions.Update(ctx, sessionID, func(s *domain.Session) error {
			if s.ThreadID != thread.ID {
				s.ActiveRunID = ""
				s.Answered = make(map[string]domain.ToolResult)
			}
			s.ThreadID = thread.ID
			s.AssistantID = app.Orchestrator.AssistantID()
			return nil
		})
		return err
	}
}
