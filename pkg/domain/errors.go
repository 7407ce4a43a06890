package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRemoteUnavailable is returned when the remote service cannot be reached or rejects the call.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrUnsupportedTool is returned when a run requests a tool that is not registered.
	ErrUnsupportedTool = errors.New("unsupported tool")

	// ErrMalformedArguments is returned when tool arguments cannot be decoded or fail validation.
	ErrMalformedArguments = errors.New("malformed tool arguments")

	// ErrToolTimeout is returned when a tool handler exceeds its per-call timeout.
	ErrToolTimeout = errors.New("tool timeout")

	// ErrToolFailed is returned when a tool handler reports an error.
	ErrToolFailed = errors.New("tool failed")

	// ErrRunTerminated is returned when a run ends in failed, cancelled or expired.
	ErrRunTerminated = errors.New("run terminated abnormally")

	// ErrThreadNotFound is returned by the remote when a thread ID cannot be resolved.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyMessage is returned when a user message has no content.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a user message exceeds the accepted length.
	ErrMessageTooLong = errors.New("message is too long")

	// ErrMessageEncoding is returned when a user message is not valid UTF-8.
	ErrMessageEncoding = errors.New("message is not valid UTF-8")

	// ErrNoMessages is returned when a thread has no message to read back.
	ErrNoMessages = errors.New("thread has no messages")
)

// RemoteUnavailableError describes a transport or auth failure of one remote operation.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: %s: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

func (e *RemoteUnavailableError) Is(target error) bool { return target == ErrRemoteUnavailable }

// Remote wraps err as a RemoteUnavailableError unless it already is one
// or it is a sentinel the caller is expected to branch on.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteUnavailableError
	if errors.As(err, &re) || errors.Is(err, ErrThreadNotFound) {
		return err
	}
	return &RemoteUnavailableError{Op: op, Err: err}
}

// UnsupportedToolError names the tool that has no registered handler.
type UnsupportedToolError struct {
	Name string
}

func (e *UnsupportedToolError) Error() string {
	return fmt.Sprintf("unsupported tool: %q", e.Name)
}

func (e *UnsupportedToolError) Is(target error) bool { return target == ErrUnsupportedTool }

// MalformedArgumentsError describes why the arguments of a call were rejected.
type MalformedArgumentsError struct {
	Tool string
	Err  error
}

func (e *MalformedArgumentsError) Error() string {
	return fmt.Sprintf("malformed arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *MalformedArgumentsError) Unwrap() error { return e.Err }

func (e *MalformedArgumentsError) Is(target error) bool { return target == ErrMalformedArguments }

// ToolTimeoutError is returned when a handler runs past its deadline.
type ToolTimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf("tool %q timed out after %s", e.Tool, e.Timeout)
}

func (e *ToolTimeoutError) Is(target error) bool { return target == ErrToolTimeout }

// ToolError wraps an error reported by a handler itself.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }

// RunTerminatedError carries the terminal status of a run that ended without a reply.
type RunTerminatedError struct {
	RunID  string
	Status RunStatus
	Reason string
}

func (e *RunTerminatedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("run %s terminated abnormally: %s (%s)", e.RunID, e.Status, e.Reason)
	}
	return fmt.Sprintf("run %s terminated abnormally: %s", e.RunID, e.Status)
}

func (e *RunTerminatedError) Is(target error) bool { return target == ErrRunTerminated }
