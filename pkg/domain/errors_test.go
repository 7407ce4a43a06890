package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"remote", &RemoteUnavailableError{Op: "create_run", Err: cause}, ErrRemoteUnavailable},
		{"unsupported", &UnsupportedToolError{Name: "getStockPrice"}, ErrUnsupportedTool},
		{"malformed", &MalformedArgumentsError{Tool: "t", Err: cause}, ErrMalformedArguments},
		{"timeout", &ToolTimeoutError{Tool: "t", Timeout: time.Second}, ErrToolTimeout},
		{"tool", &ToolError{Tool: "t", Err: cause}, ErrToolFailed},
		{"terminated", &RunTerminatedError{RunID: "r", Status: StatusExpired}, ErrRunTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("turn: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestRemote_Wrapping(t *testing.T) {
	assert.NoError(t, Remote("op", nil))

	err := Remote("list_messages", errors.New("dial tcp: refused"))
	var re *RemoteUnavailableError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, "list_messages", re.Op)

	// Already wrapped errors and branchable sentinels pass through untouched.
	assert.Same(t, err, Remote("other", err))
	assert.ErrorIs(t, Remote("get_thread", ErrThreadNotFound), ErrThreadNotFound)
	assert.NotErrorIs(t, Remote("get_thread", ErrThreadNotFound), ErrRemoteUnavailable)
}

func TestUnsupportedToolError_Message(t *testing.T) {
	err := &UnsupportedToolError{Name: "getStockPrice"}
	assert.Contains(t, err.Error(), "getStockPrice")
}
