package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "payment:processed:"

// ProcessedMarker remembers merchant references whose callback was fully
// reconciled. The orders table stays the source of truth; the marker only
// saves a query on redeliveries.
type ProcessedMarker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProcessedMarker(client *redis.Client, ttl time.Duration) *ProcessedMarker {
	return &ProcessedMarker{client: client, ttl: ttl}
}

func (m *ProcessedMarker) IsProcessed(ctx context.Context, merchantRef string) (bool, error) {
	err := m.client.Get(ctx, processedKeyPrefix+merchantRef).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *ProcessedMarker) MarkProcessed(ctx context.Context, merchantRef string) error {
	return m.client.Set(ctx, processedKeyPrefix+merchantRef, 1, m.ttl).Err()
}
