package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultTimeout bounds a single handler invocation.
const DefaultTimeout = 30 * time.Second

var (
	ErrToolNameEmpty = errors.New("tool name is empty")
	ErrNilHandler    = errors.New("tool handler is nil")
	ErrToolExists    = errors.New("tool is already registered")
	ErrInvalidSchema = errors.New("invalid parameter schema")
	ErrFrozen        = errors.New("registry is frozen")
)

// Handler executes one tool call using decoded arguments and returns the output text.
type Handler func(ctx context.Context, args map[string]any) (string, error)

type entry struct {
	tool    domain.Tool
	schema  *openapi3.Schema // nil when the tool takes no declared parameters
	handler Handler
}

// Registry maps tool names to handlers.
// Registration happens during setup; after Freeze it is read-only and safe for concurrent Dispatch.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	frozen  bool

	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithTimeout sets the per-call handler timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a new empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool and its handler.
func (r *Registry) Register(tool domain.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrToolNameEmpty
	}
	if handler == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, tool.Name)
	}
	schema, err := compileSchema(tool.Parameters)
	if err != nil {
		return fmt.Errorf("%w for tool %q: %v", ErrInvalidSchema, tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, tool.Name)
	}
	if _, ok := r.entries[tool.Name]; ok {
		return fmt.Errorf("%w: %q", ErrToolExists, tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, schema: schema, handler: handler}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool domain.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Freeze makes the registry immutable.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Tools lists the registered tools sorted by name.
func (r *Registry) Tools() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]domain.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Dispatch resolves the call to its handler and executes it.
// The returned result always carries call.ID.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ToolResult{}, err
	}

	r.mu.RLock()
	e, ok := r.entries[call.Name]
	r.mu.RUnlock()
	if !ok {
		return domain.ToolResult{}, &domain.UnsupportedToolError{Name: call.Name}
	}

	args, err := normalizeArgs(call)
	if err != nil {
		return domain.ToolResult{}, &domain.MalformedArgumentsError{Tool: call.Name, Err: err}
	}
	if e.schema != nil {
		if err := e.schema.VisitJSON(args); err != nil {
			return domain.ToolResult{}, &domain.MalformedArgumentsError{Tool: call.Name, Err: err}
		}
	}

	output, err := r.invoke(ctx, call.Name, e.handler, args)
	if err != nil {
		return domain.ToolResult{}, err
	}
	return domain.ToolResult{CallID: call.ID, Output: output}, nil
}

type outcome struct {
	output string
	err    error
}

func (r *Registry) invoke(ctx context.Context, name string, handler Handler, args map[string]any) (string, error) {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		out, err := handler(callCtx, args)
		done <- outcome{output: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var malformed *domain.MalformedArgumentsError
			if errors.As(res.err, &malformed) {
				if malformed.Tool == "" {
					malformed.Tool = name
				}
				return "", res.err
			}
			if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return "", &domain.ToolTimeoutError{Tool: name, Timeout: r.timeout}
			}
			return "", &domain.ToolError{Tool: name, Err: res.err}
		}
		return res.output, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("tool exceeded timeout", "tool", name, "timeout", r.timeout)
		return "", &domain.ToolTimeoutError{Tool: name, Timeout: r.timeout}
	}
}

// normalizeArgs returns a private JSON-shaped copy of the call arguments,
// decoding Raw when the remote sent undecoded text.
func normalizeArgs(call domain.ToolCall) (map[string]any, error) {
	var data []byte
	switch {
	case call.Args != nil:
		var err error
		if data, err = json.Marshal(call.Args); err != nil {
			return nil, err
		}
	case call.Raw != "":
		data = []byte(call.Raw)
	default:
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
