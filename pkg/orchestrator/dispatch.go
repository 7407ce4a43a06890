package orchestrator

import (
	"context"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// dispatch answers every pending call of the run. Results keep the order of the calls.
// Any failure discards the whole batch; calls that already succeeded stay in the ledger.
func (o *Orchestrator) dispatch(ctx context.Context, run *domain.Run) ([]domain.ToolResult, error) {
	calls := run.RequiredAction
	results := make([]domain.ToolResult, len(calls))

	if o.cfg.Parallel && len(calls) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, call := range calls {
			g.Go(func() error {
				res, err := o.resolve(gctx, run, call)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, call := range calls {
			res, err := o.resolve(ctx, run, call)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
	}

	return results, nil
}

// resolve answers one call, reusing a result already recorded for this run.
// A fresh result is recorded as soon as its handler returns.
func (o *Orchestrator) resolve(ctx context.Context, run *domain.Run, call domain.ToolCall) (domain.ToolResult, error) {
	event := &domain.ToolEvent{
		EventBase: o.base(domain.EventToolCall, run),
		CallID:    call.ID,
		ToolName:  call.Name,
	}

	recorded, ok, err := o.ledger.Lookup(ctx, run.ID, call.ID)
	if err != nil {
		o.logger.Warn("answered-call lookup failed", "run_id", run.ID, "call_id", call.ID, "err", err)
	}
	if ok {
		event.Cached = true
		o.logger.Info("reusing answered tool call", "run_id", run.ID, "call_id", call.ID, "tool", call.Name)
		o.toolCalled(ctx, event)
		o.toolReturned(ctx, event, 0, nil)
		return recorded, nil
	}

	o.logger.Info("dispatching tool call", "run_id", run.ID, "call_id", call.ID, "tool", call.Name)
	o.toolCalled(ctx, event)

	start := time.Now()
	res, err := o.tools.Dispatch(ctx, call)
	o.toolReturned(ctx, event, time.Since(start), err)
	if err != nil {
		o.logger.Error("tool call failed", "run_id", run.ID, "call_id", call.ID, "tool", call.Name, "err", err)
		return domain.ToolResult{}, err
	}

	if err := o.ledger.Record(context.WithoutCancel(ctx), run.ID, []domain.ToolResult{res}); err != nil {
		o.logger.Warn("failed to record answered call", "run_id", run.ID, "call_id", call.ID, "err", err)
	}
	return res, nil
}

func (o *Orchestrator) toolCalled(ctx context.Context, event *domain.ToolEvent) {
	if o.hooks.OnToolCall != nil {
		o.hooks.OnToolCall(ctx, event)
	}
}

func (o *Orchestrator) toolReturned(ctx context.Context, call *domain.ToolEvent, d time.Duration, err error) {
	if o.hooks.OnToolReturn == nil {
		return
	}
	event := *call
	event.Type = domain.EventToolReturn
	event.Timestamp = time.Now()
	event.Duration = d
	event.Err = err
	o.hooks.OnToolReturn(ctx, &event)
}
