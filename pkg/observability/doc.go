/*
Package observability turns orchestrator lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks, so the orchestrator never depends on
Prometheus or on a particular logger:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	orch := orchestrator.New(remote, conv, tools, assistantID,
		orchestrator.WithLifecycleHooks(domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))),
	)
*/
package observability
