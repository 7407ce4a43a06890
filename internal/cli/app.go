package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/relay/internal/config"
	"github.com/aretw0/relay/internal/tools"
	"github.com/aretw0/relay/pkg/adapters/file"
	"github.com/aretw0/relay/pkg/adapters/memory"
	"github.com/aretw0/relay/pkg/adapters/openai"
	"github.com/aretw0/relay/pkg/adapters/process"
	"github.com/aretw0/relay/pkg/adapters/redis"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/observability"
	"github.com/aretw0/relay/pkg/orchestrator"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/aretw0/relay/pkg/registry"
	"github.com/aretw0/relay/pkg/runner"
	"github.com/aretw0/relay/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// App holds the wired components of one relay process.
type App struct {
	Config       config.Config
	Logger       *slog.Logger
	Registry     *registry.Registry
	Sessions     *session.Manager
	Locks        *session.Locks
	Remote       ports.RemoteClient
	Conversation *conversation.Store
	Orchestrator *orchestrator.Orchestrator
	Metrics      *observability.Metrics

	ledger  ports.CallLedger
	closers []io.Closer
}

// Options tune how the App is assembled.
type Options struct {
	// SessionID binds the answered-call ledger to a stored session.
	SessionID string

	// Remote replaces the OpenAI client.
	Remote ports.RemoteClient

	// Interceptor guards every tool call (e.g. user confirmation).
	Interceptor runner.ToolInterceptor

	// Hooks are chained after the metrics and log hooks.
	Hooks domain.LifecycleHooks

	// Registerer receives the metrics. Nil uses a private registry.
	Registerer prometheus.Registerer
}

// NewTools builds the tool registry: the built-in tools plus the ones declared in
// cfg.ToolsPath.
func NewTools(cfg config.Config, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.New(registry.WithTimeout(cfg.ToolTimeout), registry.WithLogger(logger))
	if err := tools.Register(reg); err != nil {
		return nil, err
	}

	declared, err := process.LoadTools(cfg.ToolsPath)
	if err != nil {
		return nil, err
	}
	if len(declared) > 0 {
		procRunner := process.NewRunner(
			process.WithBaseDir(filepath.Dir(cfg.ToolsPath)),
			process.WithLogger(logger),
		)
		if err := procRunner.Register(reg, declared); err != nil {
			return nil, err
		}
		logger.Debug("process tools loaded", "path", cfg.ToolsPath, "count", len(declared))
	}

	reg.Freeze()
	return reg, nil
}

// NewSessions builds the session manager on the configured store.
// The returned closer releases the store connection.
func NewSessions(cfg config.Config, logger *slog.Logger) (*session.Manager, *session.Locks, io.Closer, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		locks := session.NewLocks(session.WithLocksLogger(logger))
		return session.NewManager(memory.NewStore(), session.WithLocks(locks), session.WithLogger(logger)), locks, nopCloser{}, nil

	case config.StoreFile:
		locks := session.NewLocks(session.WithLocksLogger(logger))
		store := file.New(filepath.Join(cfg.StateDir, "sessions"))
		return session.NewManager(store, session.WithLocks(locks), session.WithLogger(logger)), locks, nopCloser{}, nil

	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		prefix := cfg.Store.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		store := redis.NewFromClient(client, redis.WithPrefix(prefix), redis.WithTTL(cfg.Store.Redis.TTL))
		locks := session.NewLocks(
			session.WithDistributedLocker(redis.NewLocker(client, prefix), session.DefaultLockTTL),
			session.WithLocksLogger(logger),
		)
		return session.NewManager(store, session.WithLocks(locks), session.WithLogger(logger)), locks, store, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}
}

// Build wires the whole relay stack and makes sure the assistant exists.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	reg, err := NewTools(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load tools: %w", err)
	}
	app.Registry = reg

	sessions, locks, closer, err := NewSessions(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.Sessions, app.Locks = sessions, locks
	app.closers = append(app.closers, closer)

	switch {
	case opts.SessionID != "":
		app.ledger = sessions.Ledger(opts.SessionID)
	case cfg.Store.Kind == config.StoreRedis:
		if rs, ok := sessions.Store().(*redis.Store); ok {
			app.ledger = redis.NewLedger(rs.Client(), cfg.Store.Redis.Prefix, 0)
		}
	}
	if app.ledger == nil {
		app.ledger = memory.NewLedger()
	}

	app.Remote = opts.Remote
	if app.Remote == nil {
		app.Remote = openai.New(openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			MaxRetries: cfg.OpenAI.MaxRetries,
			Timeout:    cfg.OpenAI.Timeout,
		}, openai.WithLogger(logger))
	}

	assistantCfg := cfg.Assistant
	assistantCfg.Tools = reg.Tools()
	assistant, err := app.Remote.EnsureAssistant(ctx, assistantCfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to prepare assistant: %w", err)
	}
	logger.Info("assistant ready", "assistant_id", assistant.ID, "model", assistant.Model)

	app.Conversation = conversation.New(app.Remote,
		conversation.WithLocks(locks),
		conversation.WithMaxMessageLength(cfg.MaxMessageLength),
		conversation.WithLogger(logger),
	)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	app.Metrics = observability.NewMetrics(registerer)

	var dispatcher orchestrator.Dispatcher = reg
	if opts.Interceptor != nil {
		dispatcher = runner.Intercept(reg, opts.Interceptor)
	}

	app.Orchestrator = orchestrator.New(app.Remote, app.Conversation, dispatcher, assistant.ID,
		orchestrator.WithConfig(cfg.Orchestrator),
		orchestrator.WithLedger(app.ledger),
		orchestrator.WithLifecycleHooks(domain.ChainHooks(
			app.Metrics.Hooks(),
			observability.LogHooks(logger),
			opts.Hooks,
		)),
		orchestrator.WithLogger(logger),
	)
	return app, nil
}

// Close releases the connections held by the App.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
