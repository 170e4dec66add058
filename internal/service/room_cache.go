package service

import (
    "context"
    "fmt"

    "github.com/redis/go-redis/v9"
)

// RedisRoomCache is the redis-backed RoomCacheInvalidator. Collaborators
// (the response-cache middleware, external status dashboards) cache room
// state under "room_status:<id>"; the booking service calls InvalidateRoom
// after every committed write so stale availability never outlives a
// booking change.
type RedisRoomCache struct {
    rdb *redis.Client
}

// NewRedisRoomCache returns a RedisRoomCache, or nil when no redis client
// is configured so callers can pass the result straight to
// NewBookingService.
func NewRedisRoomCache(rdb *redis.Client) *RedisRoomCache {
    if rdb == nil {
        return nil
    }
    return &RedisRoomCache{rdb: rdb}
}

// InvalidateRoom drops the cached status entry for a room. Deleting a key
// that does not exist is not an error.
func (c *RedisRoomCache) InvalidateRoom(ctx context.Context, roomID uint64) error {
    key := fmt.Sprintf("room_status:%d", roomID)
    return c.rdb.Del(ctx, key).Err()
}
