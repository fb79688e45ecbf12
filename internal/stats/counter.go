// Package stats keeps per-outcome request counters in redis.
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"answerbridge/internal/model"
)

const (
	outcomesKey = "answerbridge:ask:outcomes"
	sourcesKey  = "answerbridge:ask:sources"
)

type Snapshot struct {
	Total    int64            `json:"total"`
	Outcomes map[string]int64 `json:"outcomes"`
	Sources  map[string]int64 `json:"sources"`
}

type Counter struct {
	client redis.Cmdable
}

func NewCounter(client redis.Cmdable) *Counter {
	return &Counter{client: client}
}

func (c *Counter) ObserveAsk(ctx context.Context, event model.AskEvent) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, outcomesKey, event.Outcome, 1)
		p.HIncrBy(ctx, sourcesKey, event.Source, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis incr ask counters failed: %w", err)
	}
	return nil
}

func (c *Counter) Snapshot(ctx context.Context) (*Snapshot, error) {
	outcomes, err := c.client.HGetAll(ctx, outcomesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read outcome counters failed: %w", err)
	}
	sources, err := c.client.HGetAll(ctx, sourcesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read source counters failed: %w", err)
	}

	snap := &Snapshot{
		Outcomes: parseCounts(outcomes),
		Sources:  parseCounts(sources),
	}
	for _, n := range snap.Outcomes {
		snap.Total += n
	}
	return snap, nil
}

func parseCounts(raw map[string]string) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}
