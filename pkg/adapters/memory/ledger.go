package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/relay/pkg/domain"
)

// DefaultLedgerTTL bounds how long the answered calls of an abandoned run are kept.
// Remote runs expire well before that.
const DefaultLedgerTTL = time.Hour

// answeredRun holds the results of one run and when it was last written.
type answeredRun struct {
	results map[string]domain.ToolResult
	touched time.Time
}

// Ledger implements ports.CallLedger in memory, keyed by run.
// It is the default ledger when no session store is configured.
// Runs not written for longer than the TTL are dropped.
type Ledger struct {
	mu   sync.Mutex
	runs map[string]*answeredRun
	ttl  time.Duration
	now  func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLedgerTTL sets how long a run is kept after its last write.
func WithLedgerTTL(ttl time.Duration) LedgerOption {
	return func(l *Ledger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLedgerClock replaces the time source.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		runs: make(map[string]*answeredRun),
		ttl:  DefaultLedgerTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Lookup(ctx context.Context, runID, callID string) (domain.ToolResult, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	run, ok := l.runs[runID]
	if !ok || l.expired(run, l.now()) {
		return domain.ToolResult{}, false, nil
	}
	res, ok := run.results[callID]
	return res, ok, nil
}

func (l *Ledger) Record(ctx context.Context, runID string, results []domain.ToolResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)

	run, ok := l.runs[runID]
	if !ok {
		run = &answeredRun{results: make(map[string]domain.ToolResult, len(results))}
		l.runs[runID] = run
	}
	run.touched = now
	for _, res := range results {
		run.results[res.CallID] = res
	}
	return nil
}

func (l *Ledger) Forget(ctx context.Context, runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.runs, runID)
	return nil
}

// Len reports how many runs currently have recorded results.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(l.now())
	return len(l.runs)
}

func (l *Ledger) expired(run *answeredRun, now time.Time) bool {
	return now.Sub(run.touched) > l.ttl
}

// sweep drops expired runs. The caller holds mu.
func (l *Ledger) sweep(now time.Time) {
	for id, run := range l.runs {
		if l.expired(run, now) {
			delete(l.runs, id)
		}
	}
}
