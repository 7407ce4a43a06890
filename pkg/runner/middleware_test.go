package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIOHandler for testing middleware inputs/outputs
type MockIOHandler struct {
	System        []string
	InputBehavior func() (string, error)
}

func (m *MockIOHandler) Input(ctx context.Context) (string, error) {
	if m.InputBehavior != nil {
		return m.InputBehavior()
	}
	return "", nil
}

func (m *MockIOHandler) Output(ctx context.Context, reply string) error { return nil }

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.System = append(m.System, msg)
	return nil
}

type echoDispatcher struct{ calls int }

func (d *echoDispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	d.calls++
	return domain.ToolResult{CallID: call.ID, Output: "executed"}, nil
}

func TestConfirmationMiddleware_Allow(t *testing.T) {
	handler := &MockIOHandler{InputBehavior: func() (string, error) { return "Y\n", nil }}
	next := &echoDispatcher{}

	res, err := Intercept(next, ConfirmationMiddleware(handler)).
		Dispatch(context.Background(), domain.ToolCall{ID: "1", Name: "delete_db"})

	require.NoError(t, err)
	assert.Equal(t, "executed", res.Output)
	assert.Equal(t, 1, next.calls)
	require.Len(t, handler.System, 1)
	assert.True(t, strings.Contains(handler.System[0], "Allow execution?"))
}

func TestConfirmationMiddleware_Deny(t *testing.T) {
	handler := &MockIOHandler{InputBehavior: func() (string, error) { return "n\n", nil }}
	next := &echoDispatcher{}

	_, err := Intercept(next, ConfirmationMiddleware(handler)).
		Dispatch(context.Background(), domain.ToolCall{ID: "1", Name: "delete_db"})

	assert.ErrorIs(t, err, ErrDenied)
	assert.ErrorIs(t, err, domain.ErrToolFailed)
	assert.Zero(t, next.calls)
}

func TestConfirmationMiddleware_InputError(t *testing.T) {
	handler := &MockIOHandler{InputBehavior: func() (string, error) { return "", errors.New("closed") }}

	_, err := Intercept(&echoDispatcher{}, ConfirmationMiddleware(handler)).
		Dispatch(context.Background(), domain.ToolCall{ID: "1", Name: "delete_db"})

	assert.ErrorContains(t, err, "tool interceptor error")
}

func TestMultiInterceptor(t *testing.T) {
	// Chain: AutoApprove -> DenyAll -> AutoApprove
	// Should fail at DenyAll
	denyAll := func(ctx context.Context, call domain.ToolCall) (bool, error) {
		return false, nil
	}

	chain := MultiInterceptor(AutoApproveMiddleware(), denyAll, AutoApproveMiddleware())

	allowed, err := chain(context.Background(), domain.ToolCall{})
	assert.NoError(t, err)
	assert.False(t, allowed, "MultiInterceptor should stop at first denial")
}
