package ports

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
)

// CallLedger remembers the tool results already produced for a run.
// The orchestrator consults it before invoking a handler so that a needs-action
// report repeated by the remote does not execute a side effect twice.
type CallLedger interface {
	// Lookup returns the recorded result for the call, if any.
	Lookup(ctx context.Context, runID, callID string) (domain.ToolResult, bool, error)

	// Record stores the results of a batch for the run.
	Record(ctx context.Context, runID string, results []domain.ToolResult) error

	// Forget drops everything recorded for the run.
	Forget(ctx context.Context, runID string) error
}
