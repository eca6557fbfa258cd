package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// defaultRedisKey is the list key entries are appended to.
const defaultRedisKey = "srxwire:audit"

// RedisSink appends audit entries to a Redis list, giving the history a
// lifetime beyond the process when durability matters.
type RedisSink struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedisSink connects to Redis at addr (host:port) and verifies the
// connection with a ping.
func NewRedisSink(addr, key string) (*RedisSink, error) {
	if key == "" {
		key = defaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to Redis at %s: %w", addr, err)
	}

	return &RedisSink{client: client, key: key, timeout: 5 * time.Second}, nil
}

// Write appends one entry as JSON to the list.
func (s *RedisSink) Write(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.RPush(ctx, s.key, data).Err()
}

// ReadAll returns every stored entry in insertion order.
func (s *RedisSink) ReadAll() ([]*Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading audit entries: %w", err)
	}

	entries := make([]*Entry, 0, len(raw))
	for _, r := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
