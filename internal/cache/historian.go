// Package cache publishes game action records to a Redis stream for
// offline history and debugging. Publishing is best-effort: the game never
// waits on Redis and a failed publish only produces a log line.
package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ActionStream is the Redis stream receiving one entry per game action.
const ActionStream = "uno:actions"

// GameActionRecord describes a single dispatched intent or room
// transition.
type GameActionRecord struct {
	RoomCode   string         `json:"roomCode"`
	ActorSeat  int            `json:"actorSeat"` // -1 for room-level events
	ActionType string         `json:"actionType"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  int64          `json:"timestamp"` // unix milliseconds
}

// Historian wraps a Redis client bound to the action stream.
type Historian struct {
	rdb *redis.Client
	log *logrus.Logger
}

// New connects a historian to the Redis instance at url
// (redis://host:port/db) and verifies the connection.
func New(ctx context.Context, url string, log *logrus.Logger) (*Historian, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Historian{rdb: rdb, log: log}, nil
}

// Publish appends a record to the action stream.
func (h *Historian) Publish(ctx context.Context, rec GameActionRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	return h.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: ActionStream,
		Values: map[string]any{
			"roomCode":   rec.RoomCode,
			"actorSeat":  rec.ActorSeat,
			"actionType": rec.ActionType,
			"payload":    string(payload),
			"timestamp":  rec.Timestamp,
		},
	}).Err()
}

// Close releases the underlying Redis connection.
func (h *Historian) Close() error {
	return h.rdb.Close()
}
