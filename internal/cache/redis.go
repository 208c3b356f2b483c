package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bitbank-mcp/internal/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "bitbank-mcp:tickers_jpy"

// InitRedis connects to addr, which may be host:port or a redis:// URL.
func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Println("Connected to Redis")
	return client, nil
}

// RedisSlot keeps the single entry as JSON under one key, so several
// server processes share it. Writes overwrite whole entries.
type RedisSlot struct {
	client redis.Cmdable
	key    string
	expire time.Duration
}

// NewRedisSlot stores under key; a positive expire lets Redis drop entries
// nobody refreshes.
func NewRedisSlot(client redis.Cmdable, key string, expire time.Duration) *RedisSlot {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSlot{client: client, key: key, expire: expire}
}

func (s *RedisSlot) Load(ctx context.Context) (*domain.TickerEntry, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry domain.TickerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	return &entry, nil
}

func (s *RedisSlot) Store(ctx context.Context, entry domain.TickerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, s.expire).Err()
}
