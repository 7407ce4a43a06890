package observability

import (
	"context"
	"errors"

	"github.com/aretw0/relay/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relay"

// Run outcomes recorded by relay_runs_total.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
)

// Tool call outcomes recorded by relay_tool_calls_total.
const (
	ToolOK     = "ok"
	ToolCached = "cached"
	ToolError  = "error"
)

// Metrics holds the Prometheus collectors of the orchestrator.
type Metrics struct {
	Polls        *prometheus.CounterVec
	Runs         *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Run status polls, by reported status.",
		}, []string{"status"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs, by outcome.",
		}, []string{"outcome"}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls answered locally, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool handler executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
	if reg != nil {
		reg.MustRegister(m.Polls, m.Runs, m.ToolCalls, m.ToolDuration)
	}
	return m
}

// Hooks returns lifecycle hooks updating the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunPolled: func(_ context.Context, e *domain.RunEvent) {
			m.Polls.WithLabelValues(e.Status.String()).Inc()
		},
		OnRunEnded: func(_ context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(RunOutcome(e)).Inc()
		},
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			switch {
			case e.Err != nil:
				m.ToolCalls.WithLabelValues(e.ToolName, ToolError).Inc()
			case e.Cached:
				m.ToolCalls.WithLabelValues(e.ToolName, ToolCached).Inc()
				return
			default:
				m.ToolCalls.WithLabelValues(e.ToolName, ToolOK).Inc()
			}
			m.ToolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
		},
	}
}

// RunOutcome classifies how a run ended.
func RunOutcome(e *domain.RunEvent) string {
	switch {
	case e.Err == nil:
		return OutcomeCompleted
	case errors.Is(e.Err, context.Canceled):
		return OutcomeCancelled
	case errors.Is(e.Err, context.DeadlineExceeded):
		return OutcomeTimeout
	case e.Status.IsAbnormal():
		return e.Status.String()
	default:
		return OutcomeError
	}
}
