/*
Package domain contains the core domain models of relay.

It defines the entities exchanged between the run orchestrator, the tool registry and the
remote assistant service: Threads and Messages, Runs and their status machine, and the
ToolCall/ToolResult pair that carries local side effects back to the remote run.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Thread: Identity of a conversation whose history is retained by the remote service.
  - Message: An immutable user or assistant message in a Thread.
  - Run: One asynchronous unit of remote work over a Thread, tracked by polling.
  - ToolCall: A side effect the remote run needs performed before it can continue.
  - ToolResult: The output of a ToolCall, correlated by call ID.
  - Session: The local bookmark tying an assistant, a thread and the active run together.
*/
package domain
