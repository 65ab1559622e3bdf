package redis

import (
	redis_models "Wordspy/models/redis"
	redis_utils "Wordspy/services/redis/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient accepts either a host:port address or a redis:// URL.
func NewRedisClient(addr string, db int) (*RedisClient, error) {
	var opt *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr, DB: db}
	}
	return &RedisClient{
		client: redis.NewClient(opt),
		ctx:    context.Background(),
	}, nil
}

// SavePresence stores the presence snapshot of a user
// Key format: "presence:{userId}"
func (rc *RedisClient) SavePresence(presence *redis_models.PlayerPresence, ttl time.Duration) error {
	key := redis_utils.FormatPresenceKey(presence.UserID)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence data: %w", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// GetPresence returns nil without error when no snapshot is stored.
func (rc *RedisClient) GetPresence(userID string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(userID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting presence data: %w", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence data: %w", err)
	}
	return &presence, nil
}

// PushOfflineMessage appends a message to the recipient's queue
// Key format: "offline:{userId}:messages"
func (rc *RedisClient) PushOfflineMessage(userID string, msg redis_models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling offline message: %w", err)
	}
	return rc.client.RPush(rc.ctx, redis_utils.FormatOfflineQueueKey(userID), data).Err()
}

// GetOfflineMessages reads the whole queue in arrival order
func (rc *RedisClient) GetOfflineMessages(userID string) ([]redis_models.ChatMessage, error) {
	raw, err := rc.client.LRange(rc.ctx, redis_utils.FormatOfflineQueueKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading offline messages: %w", err)
	}
	out := make([]redis_models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("error unmarshaling offline message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// TrimOfflineMessages drops the oldest count entries of the queue. Messages
// pushed after the read that produced count are kept.
func (rc *RedisClient) TrimOfflineMessages(userID string, count int) error {
	key := redis_utils.FormatOfflineQueueKey(userID)
	if err := rc.client.LTrim(rc.ctx, key, int64(count), -1).Err(); err != nil {
		return fmt.Errorf("error trimming offline messages: %w", err)
	}
	return nil
}

func (rc *RedisClient) ExpireOfflineMessages(userID string, ttl time.Duration) error {
	if err := rc.client.Expire(rc.ctx, redis_utils.FormatOfflineQueueKey(userID), ttl).Err(); err != nil {
		return fmt.Errorf("error setting offline messages expiry: %w", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %w", key, err)
		}
	}
	return nil
}

// TTL of a key, used by tests and diagnostics.
func (rc *RedisClient) TTL(key string) (time.Duration, error) {
	return rc.client.TTL(rc.ctx, key).Result()
}
