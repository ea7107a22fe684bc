package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream events are appended to.
const DefaultStream = "wallet:events"

// RedisStream appends events to a Redis stream so external monitors can tail
// them with XREAD.
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStream builds a sink writing to stream, trimmed to maxLen entries
// when maxLen is positive.
func NewRedisStream(client *redis.Client, stream string, maxLen int64) *RedisStream {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

// Publish appends e to the stream.
func (r *RedisStream) Publish(ctx context.Context, e Event) error {
	values := make(map[string]interface{}, 8)
	for k, v := range e.Fields() {
		values[k] = v
	}
	args := &redis.XAddArgs{Stream: r.stream, Values: values}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}
