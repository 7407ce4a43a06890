package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultLedgerTTL bounds how long answered calls of an abandoned run are kept.
const DefaultLedgerTTL = 24 * time.Hour

// Ledger implements ports.CallLedger with one hash per run (call ID -> result).
// It lets several processes driving the same thread share answered calls.
type Ledger struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewLedger creates a ledger on the client. A zero ttl uses DefaultLedgerTTL.
func NewLedger(client *backend.Client, prefix string, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Ledger{client: client, prefix: prefix, ttl: ttl}
}

func (l *Ledger) key(runID string) string {
	return l.prefix + "run:" + runID + ":answered"
}

func (l *Ledger) Lookup(ctx context.Context, runID, callID string) (domain.ToolResult, bool, error) {
	val, err := l.client.HGet(ctx, l.key(runID), callID).Bytes()
	if err != nil {
		if err == backend.Nil {
			return domain.ToolResult{}, false, nil
		}
		return domain.ToolResult{}, false, fmt.Errorf("failed to read answered call: %w", err)
	}
	var res domain.ToolResult
	if err := json.Unmarshal(val, &res); err != nil {
		return domain.ToolResult{}, false, fmt.Errorf("failed to unmarshal answered call: %w", err)
	}
	return res, true, nil
}

func (l *Ledger) Record(ctx context.Context, runID string, results []domain.ToolResult) error {
	if len(results) == 0 {
		return nil
	}
	fields := make([]any, 0, len(results)*2)
	for _, res := range results {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal answered call: %w", err)
		}
		fields = append(fields, res.CallID, data)
	}

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, l.key(runID), fields...)
	pipe.Expire(ctx, l.key(runID), l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record answered calls: %w", err)
	}
	return nil
}

func (l *Ledger) Forget(ctx context.Context, runID string) error {
	return l.client.Del(ctx, l.key(runID)).Err()
}
