package pagecache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the SQLite database file.
	Path string
	// RedisAddr is host:port or a redis:// URL.
	RedisAddr   string
	RedisPrefix string
}

// Open builds the configured backend. Redis connections are checked with a
// PING before returning.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("pagecache: sqlite backend needs a path")
		}
		return NewSQLite(cfg.Path)
	case BackendRedis:
		opts, err := redisOptions(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("pagecache: connect to redis: %w", err)
		}
		return NewRedis(client, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("pagecache: unknown backend %q", cfg.Backend)
	}
}

func redisOptions(addr string) (*redis.Options, error) {
	if addr == "" {
		return nil, fmt.Errorf("pagecache: redis backend needs an address")
	}
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("pagecache: parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}
