/*
Package orchestrator drives a remote run from creation to a terminal state.

A run is polled on a fixed, cancellable interval. When the remote pauses the run on local
side effects (needs_action), every pending tool call is resolved through the registry and the
results are submitted back as a single batch; if any call fails nothing is submitted and the
error is returned to the caller. Completed runs yield the newest thread message, while failed,
cancelled or expired runs yield a *domain.RunTerminatedError.

Answered calls are remembered per run in a ports.CallLedger so that a needs_action reported
again for the same call IDs reuses the recorded results instead of repeating side effects.
*/
package orchestrator
