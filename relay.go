package relay

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/conversation"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/orchestrator"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/aretw0/relay/pkg/registry"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Client is the high-level entry point of the library.
// It wraps the conversation store and the run orchestrator.
type Client struct {
	conv     *conversation.Store
	orch     *orchestrator.Orchestrator
	registry *registry.Registry
	logger   *slog.Logger
}

type options struct {
	assistant domain.AssistantConfig
	registry  *registry.Registry
	ledger    ports.CallLedger
	hooks     domain.LifecycleHooks
	config    *orchestrator.Config
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*options)

// WithAssistant sets the assistant to retrieve (when ID is set) or create.
func WithAssistant(cfg domain.AssistantConfig) Option {
	return func(o *options) {
		o.assistant = cfg
	}
}

// WithRegistry sets the tools the assistant may call.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLedger sets where answered tool calls are recorded.
func WithLedger(l ports.CallLedger) Option {
	return func(o *options) {
		o.ledger = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithConfig sets the polling policy.
func WithConfig(cfg orchestrator.Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New prepares the assistant on the remote and returns a ready Client.
// The registry's tools are advertised to the assistant and the registry is frozen.
func New(ctx context.Context, remote ports.RemoteClient, opts ...Option) (*Client, error) {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = registry.New(registry.WithLogger(o.logger))
	}
	o.registry.Freeze()

	cfg := o.assistant
	cfg.Tools = o.registry.Tools()
	assistant, err := remote.EnsureAssistant(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare assistant: %w", err)
	}

	conv := conversation.New(remote, conversation.WithLogger(o.logger))

	orchOpts := []orchestrator.Option{
		orchestrator.WithLifecycleHooks(o.hooks),
		orchestrator.WithLogger(o.logger),
	}
	if o.config != nil {
		orchOpts = append(orchOpts, orchestrator.WithConfig(*o.config))
	}
	if o.ledger != nil {
		orchOpts = append(orchOpts, orchestrator.WithLedger(o.ledger))
	}

	return &Client{
		conv:     conv,
		orch:     orchestrator.New(remote, conv, o.registry, assistant.ID, orchOpts...),
		registry: o.registry,
		logger:   o.logger,
	}, nil
}

// AssistantID returns the assistant runs are started with.
func (c *Client) AssistantID() string {
	return c.orch.AssistantID()
}

// NewThread starts an empty conversation.
func (c *Client) NewThread(ctx context.Context) (domain.Thread, error) {
	return c.conv.EnsureThread(ctx, "")
}

// Thread resolves an existing thread, falling back to a new one when the remote no
// longer knows it.
func (c *Client) Thread(ctx context.Context, id string) (domain.Thread, error) {
	return c.conv.EnsureThread(ctx, id)
}

// Ask appends text to the thread, drives the run to completion and returns the reply.
func (c *Client) Ask(ctx context.Context, thread domain.Thread, text string) (string, error) {
	return c.orch.Ask(ctx, thread, text)
}

// Resume finishes a run started earlier on the thread.
func (c *Client) Resume(ctx context.Context, threadID, runID string) (string, error) {
	return c.orch.Resume(ctx, threadID, runID)
}

// Tools lists the tools advertised to the assistant.
func (c *Client) Tools() []domain.Tool {
	return c.registry.Tools()
}
