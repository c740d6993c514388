package redisc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SaveSession records a login session keyed by the token ID. The entry
// expires together with the token; logout deletes it earlier.
func SaveSession(client *redis.Client, sessionID, userID string, ttl time.Duration) error {
	return client.Set(context.Background(), sessionPrefix+sessionID, userID, ttl).Err()
}

func SessionValid(client *redis.Client, sessionID string) (bool, error) {
	n, err := client.Exists(context.Background(), sessionPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func DeleteSession(client *redis.Client, sessionID string) error {
	return client.Del(context.Background(), sessionPrefix+sessionID).Err()
}
