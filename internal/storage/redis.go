package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
)

// Redis implements Provider with one hash per todo: <prefix>:<id> → {content, updated_at}.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: connect redis: %w", err)
	}
	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "jera:content"
	}
	return &Redis{client: client, prefix: prefix}
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(id string) string {
	return r.prefix + ":" + id
}

// Get returns the content of a todo.
func (r *Redis) Get(ctx context.Context, id string) (string, error) {
	if err := ValidID(id); err != nil {
		return "", err
	}
	content, err := r.client.HGet(ctx, r.key(id), "content").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("storage: get %s: %w", id, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: get %s: %w", id, err)
	}
	return content, nil
}

// Put replaces the content of a todo. Both fields are written in one HSET.
func (r *Redis) Put(ctx context.Context, id, content string) error {
	if err := ValidID(id); err != nil {
		return err
	}
	err := r.client.HSet(ctx, r.key(id),
		"content", content,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", id, err)
	}
	return nil
}

// Delete removes the content of a todo.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := ValidID(id); err != nil {
		return err
	}
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("storage: delete %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// List scans every key under the prefix.
func (r *Redis) List(ctx context.Context) ([]models.ContentMeta, error) {
	var out []models.ContentMeta
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := strings.TrimPrefix(key, r.prefix+":")
		if ValidID(id) != nil {
			continue
		}
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", id, err)
		}
		content, ok := fields["content"]
		if !ok {
			continue
		}
		updated, _ := time.Parse(time.RFC3339Nano, fields["updated_at"])
		out = append(out, models.ContentMeta{
			ID:        id,
			Checksum:  checksum.String(content),
			UpdatedAt: updated,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

var _ Provider = (*Redis)(nil)
