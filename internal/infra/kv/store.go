package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the single global list key.
const DefaultKey = "shopping:list"

// Store keeps the shopping list in a Redis list, newest item at the head.
// Every call goes to the server; nothing is cached.
type Store struct {
	client redis.Cmdable
	key    string
}

func NewStore(client redis.Cmdable, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Connect builds a client from a redis:// or rediss:// URL, as handed out by
// managed KV providers. Command retries are disabled; a failed call surfaces
// to the caller immediately.
func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing kv url: %w", err)
	}
	opts.MaxRetries = -1
	return redis.NewClient(opts), nil
}

func (s *Store) Append(ctx context.Context, item string) error {
	if err := s.client.LPush(ctx, s.key, strings.TrimSpace(item)).Err(); err != nil {
		return fmt.Errorf("pushing item: %w", err)
	}
	return nil
}

// All returns the list head to tail. A missing key reads as an empty list.
func (s *Store) All(ctx context.Context) ([]string, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Remove deletes the first exact match of item. Absent items are ignored.
func (s *Store) Remove(ctx context.Context, item string) error {
	if err := s.client.LRem(ctx, s.key, 1, item).Err(); err != nil {
		return fmt.Errorf("removing item: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging kv: %w", err)
	}
	return nil
}
