package utils

/**
 * Key formats for the Redis (key, value) pairs, kept in one place so the
 * same format spec is not repeated with "fmt.Sprintf(...)" everywhere.
 */

import "fmt"

func FormatPresenceKey(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

func FormatOfflineQueueKey(userID string) string {
	return fmt.Sprintf("offline:%s:messages", userID)
}
