package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/agentstation/feedsync/pkg/errors"
)

// DefaultRedisPrefix namespaces every key written by the Redis backend.
const DefaultRedisPrefix = "feedsync:state:"

// Redis stores each blob under a prefixed string key.
type Redis struct {
	client redis.Cmdable
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// DialRedis parses a redis:// URL, connects and pings the server.
func DialRedis(ctx context.Context, url, prefix string) (*Redis, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, errors.NewConfigError("redis", "invalid REDIS_URL", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.WrapAPI("redis", 0, err)
	}
	return NewRedis(client, prefix), client, nil
}

// Key returns the Redis key a blob is stored at.
func (r *Redis) Key(name string) string {
	return r.prefix + name
}

// Read implements Backend.
func (r *Redis) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.Key(name)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewNotFoundError("state", name)
	}
	if err != nil {
		return nil, errors.WrapAPI("redis", 0, err)
	}
	return data, nil
}

// Write implements Backend.
func (r *Redis) Write(ctx context.Context, name string, data []byte) error {
	if err := r.client.Set(ctx, r.Key(name), data, 0).Err(); err != nil {
		return errors.WrapAPI("redis", 0, err)
	}
	return nil
}

// Delete implements Backend.
func (r *Redis) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.Key(name)).Err(); err != nil {
		return errors.WrapAPI("redis", 0, err)
	}
	return nil
}
