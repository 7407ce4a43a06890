package session

import (
	"context"

	"github.com/aretw0/relay/pkg/domain"
)

// ledger keeps the answered calls of the session's active run inside the session record,
// so a restarted process does not re-run side effects the remote has not yet acknowledged.
// Only one run per session is tracked; recording a new run replaces the previous one.
type ledger struct {
	manager   *Manager
	sessionID string
}

func (l *ledger) Lookup(ctx context.Context, runID, callID string) (domain.ToolResult, bool, error) {
	s, err := l.manager.Load(ctx, l.sessionID)
	if err != nil {
		return domain.ToolResult{}, false, err
	}
	if s.ActiveRunID != runID {
		return domain.ToolResult{}, false, nil
	}
	res, ok := s.Answered[callID]
	return res, ok, nil
}

func (l *ledger) Record(ctx context.Context, runID string, results []domain.ToolResult) error {
	_, err := l.manager.Update(ctx, l.sessionID, func(s *domain.Session) error {
		if s.ActiveRunID != runID {
			s.ActiveRunID = runID
			s.Answered = make(map[string]domain.ToolResult, len(results))
		}
		for _, res := range results {
			s.Answered[res.CallID] = res
		}
		return nil
	})
	return err
}

func (l *ledger) Forget(ctx context.Context, runID string) error {
	_, err := l.manager.Update(ctx, l.sessionID, func(s *domain.Session) error {
		if s.ActiveRunID == runID {
			s.ActiveRunID = ""
			s.Answered = make(map[string]domain.ToolResult)
		}
		return nil
	})
	return err
}
