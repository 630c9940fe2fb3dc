// Package events publishes pipeline change notifications to Redis so other
// services can react to saved, updated and removed candidates.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel pipeline events are published on.
const Channel = "pipeline.events"

// Event types
const (
	TypeCandidateSaved   = "candidate.saved"
	TypeCandidateUpdated = "candidate.updated"
	TypeCandidateRemoved = "candidate.removed"
)

// Event is a single pipeline mutation.
type Event struct {
	Type       string    `json:"type"`
	OwnerID    string    `json:"ownerId"`
	Login      string    `json:"login"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers pipeline events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Connect parses a redis:// URL and verifies the server answers PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// redisClient is the subset of *redis.Client used for publishing.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes JSON-encoded events to Channel.
type RedisPublisher struct {
	rdb     redisClient
	channel string
	now     func() time.Time
}

// NewRedisPublisher returns a publisher backed by rdb.
func NewRedisPublisher(rdb redisClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: Channel, now: time.Now}
}

// Publish stamps OccurredAt when unset and sends the event.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }
