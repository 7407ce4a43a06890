package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/relay/pkg/domain"
)

// ErrDenied is reported when a tool call is blocked by policy.
var ErrDenied = errors.New("execution denied by policy")

// Dispatcher resolves one tool call to its result.
type Dispatcher interface {
	Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// ToolInterceptor is a middleware that can block a tool call before it runs.
// It returns true if execution should proceed.
type ToolInterceptor func(ctx context.Context, call domain.ToolCall) (bool, error)

// MultiInterceptor chains multiple interceptors.
func MultiInterceptor(interceptors ...ToolInterceptor) ToolInterceptor {
	return func(ctx context.Context, call domain.ToolCall) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, call)
			if err != nil {
				return false, err // System Error
			}
			if !allowed {
				return false, nil // Blocked by policy
			}
		}
		return true, nil // All allowed
	}
}

// ConfirmationMiddleware asks the user before every tool execution.
// Prompts are serialized so parallel dispatch does not interleave questions.
func ConfirmationMiddleware(handler IOHandler) ToolInterceptor {
	var mu sync.Mutex
	return func(ctx context.Context, call domain.ToolCall) (bool, error) {
		mu.Lock()
		defer mu.Unlock()

		args := call.Raw
		if call.Args != nil {
			args = fmt.Sprint(call.Args)
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Tool Request: '%s' (ID: %s)\nArgs: %s\nAllow execution? [y/N]", call.Name, call.ID, args)); err != nil {
			return false, err
		}

		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}

		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() ToolInterceptor {
	return func(ctx context.Context, call domain.ToolCall) (bool, error) {
		return true, nil
	}
}

// Intercept guards every dispatch with the interceptor. A denied call fails
// with a ToolError wrapping ErrDenied, which aborts the whole batch.
func Intercept(next Dispatcher, interceptor ToolInterceptor) Dispatcher {
	return interceptedDispatcher{next: next, interceptor: interceptor}
}

type interceptedDispatcher struct {
	next        Dispatcher
	interceptor ToolInterceptor
}

func (d interceptedDispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	allowed, err := d.interceptor(ctx, call)
	if err != nil {
		return domain.ToolResult{}, fmt.Errorf("tool interceptor error: %w", err)
	}
	if !allowed {
		return domain.ToolResult{}, &domain.ToolError{Tool: call.Name, Err: ErrDenied}
	}
	return d.next.Dispatch(ctx, call)
}
