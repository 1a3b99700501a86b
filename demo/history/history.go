// Package history persists chat session transcripts for the demo
// backend. Two drivers exist behind the Store interface: an in-memory
// map (the default) and Redis, which uses the chat:{id}:messages and
// chat:{id}:meta key scheme with a TTL so abandoned sessions expire.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finsight/finsight"
)

// Record is one stored conversation turn.
type Record struct {
	Role finsight.Role `json:"role"`
	Text string        `json:"text"`
	TS   string        `json:"ts"`
}

// Meta describes a session: when it started and the financial context
// the responder grounds its replies in.
type Meta struct {
	StartedAt   string `json:"started_at"`
	ContextText string `json:"context_text"`
}

// Store persists chat session history.
type Store interface {
	// Create stores a new session's meta and preamble records.
	Create(ctx context.Context, id string, meta Meta, preamble []Record) error

	// Append adds a record to an existing session.
	// Returns finsight.ErrSessionNotFound for unknown ids.
	Append(ctx context.Context, id string, rec Record) error

	// Window returns the most recent n records in stored order.
	// Returns finsight.ErrSessionNotFound for unknown ids.
	Window(ctx context.Context, id string, n int) ([]Record, error)

	// Meta retrieves a session's meta.
	// Returns finsight.ErrSessionNotFound for unknown ids.
	Meta(ctx context.Context, id string) (Meta, error)

	// Close closes the store and releases any resources.
	Close() error
}

// StoreType represents the type of history store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

var (
	// ErrInvalidStoreType indicates an unrecognized StoreType.
	ErrInvalidStoreType = errors.New("history: invalid store type")

	// ErrInvalidConfig indicates missing required store configuration.
	ErrInvalidConfig = errors.New("history: invalid store configuration")
)

// StoreOption is a functional option for configuring a history store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	redisTTL    time.Duration
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for Redis keys. Defaults to 24h.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// NewStore creates a Store of the given type. The Redis driver requires
// WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			sessions: make(map[string]*memorySession),
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
