/*
Package ports defines the driven ports (interfaces) for relay.

These interfaces decouple the orchestration core from external implementations, allowing
it to work with various remote services, storage backends and lock managers.

# Key Interfaces

  - RemoteClient: The remote assistant service (threads, messages, runs, tool results).
  - SessionStore: Responsible for persisting and loading session bookmarks.
  - CallLedger: Remembers answered tool calls so a re-reported action is not re-executed.
  - DistributedLocker: Provides distributed locking for threads shared across processes.
*/
package ports
