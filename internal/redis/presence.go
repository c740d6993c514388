package redisc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey      = "classroom:online"
	presenceKeyPrefix = "classroom:presence:"

	// presenceTTL outlives two ping periods, so one dropped ping does
	// not flap a member offline.
	presenceTTL = 120 * time.Second
)

// SetOnline marks a user online: they join the global online set and get
// a per-user key that expires unless RefreshPresence keeps it alive.
func SetOnline(client *redis.Client, userID string) error {
	ctx := context.Background()
	pipe := client.Pipeline()
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.Set(ctx, presenceKeyPrefix+userID, "online", presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func SetOffline(client *redis.Client, userID string) error {
	ctx := context.Background()
	pipe := client.Pipeline()
	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.Del(ctx, presenceKeyPrefix+userID)
	_, err := pipe.Exec(ctx)
	return err
}

func RefreshPresence(client *redis.Client, userID string) error {
	return client.Expire(context.Background(), presenceKeyPrefix+userID, presenceTTL).Err()
}

// OnlineSet returns the online user IDs as a set, ready for flagging a
// member list.
func OnlineSet(client *redis.Client) (map[string]bool, error) {
	ids, err := client.SMembers(context.Background(), onlineSetKey).Result()
	if err != nil {
		return nil, err
	}
	online := make(map[string]bool, len(ids))
	for _, id := range ids {
		online[id] = true
	}
	return online, nil
}
