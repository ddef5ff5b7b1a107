package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

const sessionKeyPrefix = "timetable:session:"

// RedisSessionRepository stores each session's entry list as a JSON payload with a TTL.
type RedisSessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSessionRepository constructs a Redis-backed session repository.
func NewRedisSessionRepository(client *redis.Client, logger *zap.Logger) *RedisSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSessionRepository{client: client, logger: logger}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get retrieves the entry list for the session.
func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) ([]models.Entry, error) {
	if r.client == nil {
		return nil, appErrors.ErrSessionMiss
	}

	key := sessionKey(sessionID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return entries, nil
}

// Save replaces the entry list for the session and refreshes its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, sessionID string, entries []models.Entry, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	key := sessionKey(sessionID)
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete drops the session's entry list.
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return nil
	}

	key := sessionKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection if present.
func (r *RedisSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
