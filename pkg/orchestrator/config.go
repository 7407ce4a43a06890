package orchestrator

import (
	"log/slog"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
)

const (
	DefaultPollInterval  = 1 * time.Second
	DefaultCancelTimeout = 10 * time.Second
)

// Config holds the polling policy of the orchestrator.
type Config struct {
	// PollInterval is the delay between polls of a non-terminal run.
	PollInterval time.Duration `yaml:"poll_interval"`

	// SettleDelay is waited after completion before reading the reply.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// RunTimeout bounds a whole Await. Zero means no bound.
	RunTimeout time.Duration `yaml:"run_timeout"`

	// CancelTimeout bounds the best-effort remote cancel issued when the caller gives up.
	CancelTimeout time.Duration `yaml:"cancel_timeout"`

	// Parallel dispatches the calls of one batch concurrently.
	Parallel bool `yaml:"parallel"`
}

// DefaultConfig returns the default polling policy.
func DefaultConfig() Config {
	return Config{
		PollInterval:  DefaultPollInterval,
		CancelTimeout: DefaultCancelTimeout,
	}
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithConfig replaces the whole polling policy. Zero intervals fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// WithPollInterval sets the delay between polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.cfg.PollInterval = d
	}
}

// WithParallel toggles concurrent dispatch of a batch.
func WithParallel(enabled bool) Option {
	return func(o *Orchestrator) {
		o.cfg.Parallel = enabled
	}
}

// WithLedger configures where answered calls are remembered.
func WithLedger(ledger ports.CallLedger) Option {
	return func(o *Orchestrator) {
		o.ledger = ledger
	}
}

// WithThreadLocks shares the keyed locks that keep one active run per thread.
func WithThreadLocks(locks ThreadLocker) Option {
	return func(o *Orchestrator) {
		o.locks = locks
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}
