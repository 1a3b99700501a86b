package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finsight/finsight"
)

// redisStore implements Store using Redis lists, one list per session.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func messagesKey(id string) string { return "chat:" + id + ":messages" }
func metaKey(id string) string     { return "chat:" + id + ":meta" }

// Create implements Store.
func (s *redisStore) Create(ctx context.Context, id string, meta Meta, preamble []Record) error {
	metaVal, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, metaKey(id), metaVal, s.ttl)
	for _, rec := range preamble {
		val, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		pipe.RPush(ctx, messagesKey(id), val)
	}
	pipe.Expire(ctx, messagesKey(id), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Append implements Store.
func (s *redisStore) Append(ctx context.Context, id string, rec Record) error {
	exists, err := s.client.Exists(ctx, metaKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return finsight.ErrSessionNotFound
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, messagesKey(id), val)
	pipe.Expire(ctx, messagesKey(id), s.ttl)
	pipe.Expire(ctx, metaKey(id), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Window implements Store.
func (s *redisStore) Window(ctx context.Context, id string, n int) ([]Record, error) {
	exists, err := s.client.Exists(ctx, metaKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, finsight.ErrSessionNotFound
	}

	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	raw, err := s.client.LRange(ctx, messagesKey(id), start, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Malformed entries are skipped.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Meta implements Store.
func (s *redisStore) Meta(ctx context.Context, id string) (Meta, error) {
	val, err := s.client.Get(ctx, metaKey(id)).Result()
	if err == redis.Nil {
		return Meta{}, finsight.ErrSessionNotFound
	}
	if err != nil {
		return Meta{}, err
	}

	var meta Meta
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		return Meta{}, fmt.Errorf("history: %w", err)
	}

	// Refresh TTL on read.
	_ = s.client.Expire(ctx, metaKey(id), s.ttl).Err()

	return meta, nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
