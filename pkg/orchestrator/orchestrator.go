package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/adapters/memory"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/aretw0/relay/pkg/session"
)

// Conversation is the part of the conversation store the orchestrator relies on.
type Conversation interface {
	AppendUserMessage(ctx context.Context, thread domain.Thread, text string) (domain.Message, error)
	NewestMessage(ctx context.Context, threadID string) (domain.Message, error)
}

// Dispatcher resolves one tool call to its result.
type Dispatcher interface {
	Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// ThreadLocker serializes work per key.
type ThreadLocker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// Orchestrator runs the assistant over a thread and services its tool calls.
type Orchestrator struct {
	remote      ports.RemoteClient
	conv        Conversation
	tools       Dispatcher
	assistantID string

	cfg    Config
	ledger ports.CallLedger
	locks  ThreadLocker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// New creates an orchestrator for the given assistant.
func New(remote ports.RemoteClient, conv Conversation, tools Dispatcher, assistantID string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:      remote,
		conv:        conv,
		tools:       tools,
		assistantID: assistantID,
		cfg:         DefaultConfig(),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg.PollInterval <= 0 {
		o.cfg.PollInterval = DefaultPollInterval
	}
	if o.cfg.CancelTimeout <= 0 {
		o.cfg.CancelTimeout = DefaultCancelTimeout
	}
	if o.ledger == nil {
		o.ledger = memory.NewLedger()
	}
	if o.locks == nil {
		o.locks = session.NewLocks(session.WithLocksLogger(o.logger))
	}
	return o
}

// AssistantID returns the assistant runs are created for.
func (o *Orchestrator) AssistantID() string {
	return o.assistantID
}

// Ask appends text to the thread, runs the assistant and returns its reply.
// Asks on the same thread wait for each other: a thread has at most one active run.
func (o *Orchestrator) Ask(ctx context.Context, thread domain.Thread, text string) (string, error) {
	var reply string
	err := o.locks.WithLock(ctx, runKey(thread.ID), func(ctx context.Context) error {
		run, err := o.Start(ctx, thread, text)
		if err != nil {
			return err
		}
		reply, err = o.Await(ctx, run)
		return err
	})
	return reply, err
}

// Start appends the user message and creates a run over the thread.
func (o *Orchestrator) Start(ctx context.Context, thread domain.Thread, text string) (*domain.Run, error) {
	if _, err := o.conv.AppendUserMessage(ctx, thread, text); err != nil {
		return nil, err
	}

	run, err := o.remote.CreateRun(ctx, thread.ID, o.assistantID)
	if err != nil {
		return nil, domain.Remote("create run", err)
	}
	if run.ThreadID == "" {
		run.ThreadID = thread.ID
	}
	if run.Status == "" {
		run.Status = domain.StatusQueued
	}

	// Mark the run active so a restarted process can resume it.
	if err := o.ledger.Record(ctx, run.ID, nil); err != nil {
		o.logger.Warn("failed to record active run", "run_id", run.ID, "err", err)
	}

	o.logger.Info("run started", "thread_id", run.ThreadID, "run_id", run.ID)
	if o.hooks.OnRunStarted != nil {
		o.hooks.OnRunStarted(ctx, &domain.RunEvent{
			EventBase: o.base(domain.EventRunStarted, run),
			Status:    run.Status,
		})
	}
	return run, nil
}

// Resume continues driving a run created earlier, e.g. by a process that stopped mid-run.
func (o *Orchestrator) Resume(ctx context.Context, threadID, runID string) (string, error) {
	var reply string
	err := o.locks.WithLock(ctx, runKey(threadID), func(ctx context.Context) error {
		var err error
		reply, err = o.Await(ctx, &domain.Run{ID: runID, ThreadID: threadID, AssistantID: o.assistantID})
		return err
	})
	return reply, err
}

func runKey(threadID string) string {
	return "run:" + threadID
}

// Poll refreshes the run from the remote: its status and pending tool calls.
func (o *Orchestrator) Poll(ctx context.Context, run *domain.Run) error {
	latest, err := o.remote.GetRun(ctx, run.ThreadID, run.ID)
	if err != nil {
		return domain.Remote("get run", err)
	}
	run.Status = latest.Status
	run.RequiredAction = latest.RequiredAction
	run.LastError = latest.LastError
	return nil
}

// Await polls the run until it reaches a terminal state and returns the reply text.
func (o *Orchestrator) Await(ctx context.Context, run *domain.Run) (string, error) {
	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	polls := 0
	for {
		if err := o.Poll(ctx, run); err != nil {
			return "", o.abort(ctx, run, polls, err, false)
		}
		polls++
		o.logger.Debug("run polled", "thread_id", run.ThreadID, "run_id", run.ID, "status", run.Status, "polls", polls)
		if o.hooks.OnRunPolled != nil {
			o.hooks.OnRunPolled(ctx, &domain.RunEvent{
				EventBase: o.base(domain.EventRunPolled, run),
				Status:    run.Status,
				Polls:     polls,
			})
		}

		switch {
		case run.Status == domain.StatusCompleted:
			o.finish(ctx, run, polls, nil)
			return o.reply(ctx, run)

		case run.Status.IsAbnormal():
			err := &domain.RunTerminatedError{RunID: run.ID, Status: run.Status, Reason: run.LastError}
			o.finish(ctx, run, polls, err)
			return "", err

		case run.NeedsAction():
			results, err := o.dispatch(ctx, run)
			if err != nil {
				// Nothing is submitted, so the run would hold the thread until it expires.
				return "", o.abort(ctx, run, polls, err, true)
			}
			if err := o.remote.SubmitToolResults(ctx, run.ThreadID, run.ID, results); err != nil {
				return "", o.abort(ctx, run, polls, domain.Remote("submit tool results", err), false)
			}
			o.logger.Debug("tool results submitted", "run_id", run.ID, "count", len(results))
			// The remote resumes immediately; poll again without waiting.

		default:
			if err := o.wait(ctx, o.cfg.PollInterval); err != nil {
				return "", o.abort(ctx, run, polls, err, false)
			}
		}
	}
}

func (o *Orchestrator) reply(ctx context.Context, run *domain.Run) (string, error) {
	if o.cfg.SettleDelay > 0 {
		if err := o.wait(ctx, o.cfg.SettleDelay); err != nil {
			return "", err
		}
	}
	msg, err := o.conv.NewestMessage(ctx, run.ThreadID)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// wait suspends for d or until ctx is done.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// finish handles a run that reached a terminal state.
func (o *Orchestrator) finish(ctx context.Context, run *domain.Run, polls int, err error) {
	if ferr := o.ledger.Forget(context.WithoutCancel(ctx), run.ID); ferr != nil {
		o.logger.Warn("failed to clear answered calls", "run_id", run.ID, "err", ferr)
	}
	if err != nil {
		o.logger.Warn("run terminated", "thread_id", run.ThreadID, "run_id", run.ID, "status", run.Status, "err", err)
	} else {
		o.logger.Info("run completed", "thread_id", run.ThreadID, "run_id", run.ID, "polls", polls)
	}
	o.ended(ctx, run, polls, err)
}

// abort handles a run this side gives up on. When the caller cancelled or cancelRun is set,
// the remote run is cancelled in the background without waiting for it.
// Answered calls stay in the ledger so a resumed run does not repeat them.
func (o *Orchestrator) abort(ctx context.Context, run *domain.Run, polls int, err error, cancelRun bool) error {
	if ctx.Err() != nil {
		err = ctx.Err()
		cancelRun = true
	}
	if cancelRun {
		o.cancelRemote(ctx, run)
	}
	o.logger.Error("run aborted", "thread_id", run.ThreadID, "run_id", run.ID, "status", run.Status, "err", err)
	o.ended(ctx, run, polls, err)
	return err
}

func (o *Orchestrator) cancelRemote(ctx context.Context, run *domain.Run) {
	threadID, runID := run.ThreadID, run.ID
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.CancelTimeout)
	go func() {
		defer cancel()
		if err := o.remote.CancelRun(cctx, threadID, runID); err != nil {
			o.logger.Warn("best-effort run cancel failed", "thread_id", threadID, "run_id", runID, "err", err)
		}
	}()
}

func (o *Orchestrator) ended(ctx context.Context, run *domain.Run, polls int, err error) {
	if o.hooks.OnRunEnded != nil {
		o.hooks.OnRunEnded(ctx, &domain.RunEvent{
			EventBase: o.base(domain.EventRunEnded, run),
			Status:    run.Status,
			Polls:     polls,
			Err:       err,
		})
	}
}

func (o *Orchestrator) base(t domain.EventType, run *domain.Run) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		ThreadID:  run.ThreadID,
		RunID:     run.ID,
	}
}
