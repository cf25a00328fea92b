package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// NewRedisClient returns nil when addr is empty.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisStream appends each synced bundle to a Redis stream so other services
// can consume the external data without calling the upstreams.
type RedisStream struct {
	client *redis.Client
	stream string
}

func NewRedisStream(client *redis.Client, stream string) *RedisStream {
	return &RedisStream{client: client, stream: stream}
}

// Enabled reports whether a client is configured.
func (p *RedisStream) Enabled() bool {
	return p != nil && p.client != nil
}

// Publish XADDs the bundle. It is a no-op without a client.
func (p *RedisStream) Publish(ctx context.Context, b external.Bundle) error {
	if !p.Enabled() {
		return nil
	}

	values, err := streamValues(b)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to redis stream %s: %w", p.stream, err)
	}
	return nil
}

func streamValues(b external.Bundle) (map[string]interface{}, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return map[string]interface{}{
		"data":          string(data),
		"used_fallback": strconv.FormatBool(b.UsedFallback),
		"synced_at":     b.SyncedAt.UTC().Format(time.RFC3339),
	}, nil
}
