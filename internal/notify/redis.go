// Package notify publishes tier transitions to a Redis stream.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rogers-f/tierforge/internal/domain"
)

// DefaultStream is the stream transitions are appended to.
const DefaultStream = "tierforge.transitions"

// StreamAdder is the subset of a Redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends transition results to a Redis stream.
type RedisPublisher struct {
	Client StreamAdder
	Stream string
}

// NewRedisPublisher connects to the Redis server at url. The connection is
// lazy; the first publish reports an unreachable server.
func NewRedisPublisher(url, stream string) (*RedisPublisher, *redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, domain.Detail(domain.ErrConfigInvalid, "redis_url: %v", err)
	}
	if stream == "" {
		stream = DefaultStream
	}
	rdb := redis.NewClient(opt)
	return &RedisPublisher{Client: rdb, Stream: stream}, rdb, nil
}

// PublishTransition appends res to the stream and returns the entry ID.
func (p *RedisPublisher) PublishTransition(ctx context.Context, res *domain.TierTransitionResult) (string, error) {
	id, err := p.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream,
		Values: Payload(res),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("publish transition for %s: %w", res.AgentID, err)
	}
	return id, nil
}

// Payload returns the stream fields for res.
func Payload(res *domain.TierTransitionResult) map[string]interface{} {
	return map[string]interface{}{
		"agent_id": res.AgentID,
		"from":     string(res.PreviousTier),
		"to":       string(res.NewTier),
		"changed":  strconv.FormatBool(res.Changed),
	}
}
