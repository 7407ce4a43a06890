package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	backend "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// DefaultListLimit is how many messages are fetched when reading a thread back.
const DefaultListLimit = 20

// Client implements ports.RemoteClient on the OpenAI Assistants API.
type Client struct {
	api    backend.Client
	logger *slog.Logger
	limit  int64
}

var _ ports.RemoteClient = (*Client)(nil)

// Config holds the connection settings of the client.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithListLimit sets how many messages ListMessages fetches.
func WithListLimit(n int64) Option {
	return func(c *Client) {
		c.limit = n
	}
}

// New creates a client. Zero Config fields fall back to the SDK defaults
// (OPENAI_API_KEY, OPENAI_BASE_URL, two retries).
func New(cfg Config, opts ...Option) *Client {
	var reqOpts []option.RequestOption
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	c := &Client{
		api:    backend.NewClient(reqOpts...),
		logger: logging.NewNop(),
		limit:  DefaultListLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureAssistant retrieves cfg.ID, or creates an assistant with the configured tools
// when no ID is set or the ID is unknown.
func (c *Client) EnsureAssistant(ctx context.Context, cfg domain.AssistantConfig) (domain.Assistant, error) {
	if cfg.ID != "" {
		a, err := c.api.Beta.Assistants.Get(ctx, cfg.ID)
		if err == nil {
			return toAssistant(a), nil
		}
		if !isNotFound(err) {
			return domain.Assistant{}, domain.Remote("retrieve assistant", err)
		}
		c.logger.Warn("assistant not found, creating a new one", "assistant_id", cfg.ID)
	}

	cfg = cfg.WithDefaults()
	params := backend.BetaAssistantNewParams{
		Model:        shared.ChatModel(cfg.Model),
		Name:         backend.String(cfg.Name),
		Instructions: backend.String(cfg.Instructions),
	}
	for _, tool := range cfg.Tools {
		params.Tools = append(params.Tools, toToolParam(tool))
	}

	a, err := c.api.Beta.Assistants.New(ctx, params)
	if err != nil {
		return domain.Assistant{}, domain.Remote("create assistant", err)
	}
	c.logger.Info("assistant created", "assistant_id", a.ID, "tools", len(cfg.Tools))
	return toAssistant(a), nil
}

// EnsureThread retrieves the thread when id is set, else creates one.
// An unknown id yields domain.ErrThreadNotFound.
func (c *Client) EnsureThread(ctx context.Context, id string) (domain.Thread, error) {
	if id != "" {
		t, err := c.api.Beta.Threads.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return domain.Thread{}, fmt.Errorf("%w: %s", domain.ErrThreadNotFound, id)
			}
			return domain.Thread{}, domain.Remote("retrieve thread", err)
		}
		return domain.Thread{ID: t.ID}, nil
	}

	t, err := c.api.Beta.Threads.New(ctx, backend.BetaThreadNewParams{})
	if err != nil {
		return domain.Thread{}, domain.Remote("create thread", err)
	}
	return domain.Thread{ID: t.ID}, nil
}

// AppendMessage adds one message to the end of the thread.
func (c *Client) AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (domain.Message, error) {
	params := backend.BetaThreadMessageNewParams{
		Role: backend.BetaThreadMessageNewParamsRoleUser,
		Content: backend.BetaThreadMessageNewParamsContentUnion{
			OfString: backend.String(text),
		},
	}
	if role == domain.RoleAssistant {
		params.Role = backend.BetaThreadMessageNewParamsRoleAssistant
	}

	m, err := c.api.Beta.Threads.Messages.New(ctx, threadID, params)
	if err != nil {
		return domain.Message{}, domain.Remote("append message", err)
	}
	return toMessage(m), nil
}

// CreateRun starts a run of the assistant over the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error) {
	r, err := c.api.Beta.Threads.Runs.New(ctx, threadID, backend.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return nil, domain.Remote("create run", err)
	}
	return toRun(r), nil
}

// GetRun returns the current status of the run and its pending tool calls.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*domain.Run, error) {
	r, err := c.api.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return nil, domain.Remote("get run", err)
	}
	return toRun(r), nil
}

// SubmitToolResults answers every pending tool call of the run in one request.
func (c *Client) SubmitToolResults(ctx context.Context, threadID, runID string, results []domain.ToolResult) error {
	outputs := make([]backend.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(results))
	for _, res := range results {
		outputs = append(outputs, backend.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: backend.String(res.CallID),
			Output:     backend.String(res.Output),
		})
	}
	_, err := c.api.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, backend.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: outputs,
	})
	return domain.Remote("submit tool outputs", err)
}

// ListMessages returns the newest messages of the thread, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	page, err := c.api.Beta.Threads.Messages.List(ctx, threadID, backend.BetaThreadMessageListParams{
		Order: backend.BetaThreadMessageListParamsOrderDesc,
		Limit: backend.Int(c.limit),
	})
	if err != nil {
		return nil, domain.Remote("list messages", err)
	}
	msgs := make([]domain.Message, 0, len(page.Data))
	for i := range page.Data {
		msgs = append(msgs, toMessage(&page.Data[i]))
	}
	return msgs, nil
}

// CancelRun asks the remote to stop the run.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) error {
	_, err := c.api.Beta.Threads.Runs.Cancel(ctx, threadID, runID)
	return domain.Remote("cancel run", err)
}

func isNotFound(err error) bool {
	var apiErr *backend.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
