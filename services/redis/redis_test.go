package redis

import (
	redis_models "Wordspy/models/redis"
	redis_utils "Wordspy/services/redis/utils"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveClient connects to the Redis of the local environment and skips the
// test when none is running.
func liveClient(t *testing.T) *RedisClient {
	t.Helper()
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	rc, err := InitRedis(addr, 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { CloseRedis(rc) })
	return rc
}

func TestNewRedisClientAddresses(t *testing.T) {
	rc, err := NewRedisClient("localhost:6379", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rc.client.Options().DB)

	rc, err = NewRedisClient("redis://:secret@cache:6380/1", 0)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", rc.client.Options().Addr)
	assert.Equal(t, 1, rc.client.Options().DB)

	_, err = NewRedisClient("redis://bad host:/x", 0)
	assert.Error(t, err)
}

func TestPresenceOperations(t *testing.T) {
	rc := liveClient(t)
	defer rc.CleanupKeys([]string{redis_utils.FormatPresenceKey("test_presence")})

	missing, err := rc.GetPresence("test_presence")
	require.NoError(t, err)
	assert.Nil(t, missing)

	presence := &redis_models.PlayerPresence{UserID: "test_presence", Status: redis_models.StatusOnline, LastSeen: 42}
	require.NoError(t, rc.SavePresence(presence, time.Minute))

	got, err := rc.GetPresence("test_presence")
	require.NoError(t, err)
	assert.Equal(t, presence, got)
}

func TestOfflineQueueOperations(t *testing.T) {
	rc := liveClient(t)
	key := redis_utils.FormatOfflineQueueKey("test_offline")
	defer rc.CleanupKeys([]string{key})

	for _, text := range []string{"first", "second"} {
		require.NoError(t, rc.PushOfflineMessage("test_offline", redis_models.ChatMessage{
			From: "ana", To: "test_offline", Message: text, Timestamp: time.Unix(100, 0).UTC(),
		}))
	}
	require.NoError(t, rc.ExpireOfflineMessages("test_offline", time.Hour))

	ttl, err := rc.TTL(key)
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	msgs, err := rc.GetOfflineMessages("test_offline")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)

	require.NoError(t, rc.PushOfflineMessage("test_offline", redis_models.ChatMessage{
		From: "ana", To: "test_offline", Message: "third", Timestamp: time.Unix(101, 0).UTC(),
	}))
	require.NoError(t, rc.TrimOfflineMessages("test_offline", len(msgs)))
	msgs, err = rc.GetOfflineMessages("test_offline")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "third", msgs[0].Message)

	require.NoError(t, rc.TrimOfflineMessages("test_offline", 1))
	msgs, err = rc.GetOfflineMessages("test_offline")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
