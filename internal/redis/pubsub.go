package redisc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Every room has its own channel. Announcement, reaction, membership and
// room events all travel through it, so any instance can serve any client.
const roomChannelPrefix = "classroom:room:"

func PublishToRoom(client *redis.Client, roomID string, data []byte) error {
	return client.Publish(context.Background(), roomChannelPrefix+roomID, data).Err()
}

// SubscribeRooms blocks, feeding every room event this instance receives
// to the handler. Run it in its own goroutine.
func SubscribeRooms(client *redis.Client, handler func(roomID string, data []byte)) {
	ctx := context.Background()
	pubsub := client.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	slog.Info("subscribed to room events", "pattern", roomChannelPrefix+"*")
	for msg := range pubsub.Channel() {
		roomID := strings.TrimPrefix(msg.Channel, roomChannelPrefix)
		slog.Debug("room event received", "room_id", roomID)
		handler(roomID, []byte(msg.Payload))
	}
}
