package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidq/vidq-go/internal/keys"
)

// Queue entries are bare task IDs. The record of truth lives in the details
// hash, so requeueing an entry never resurrects stale task state.

// Atomic dequeue script: RPOP from pending and ZADD into active with the
// lease expiry as score.
var dequeueScript = redis.NewScript(
	// language=Lua
	`
	local v = redis.call('RPOP', KEYS[1])
	if not v then return false end
	redis.call('ZADD', KEYS[2], ARGV[1], v)
	return v
	`,
)

// reclaimOneScript atomically moves one lease-expired active entry back to
// pending so another worker can pick it up.
var reclaimOneScript = redis.NewScript(
	// language=Lua
	`
	local akey = KEYS[1]
	local pkey = KEYS[2]
	local now  = ARGV[1]
	local items = redis.call('ZRANGEBYSCORE', akey, '-inf', now, 'LIMIT', 0, 1)
	if #items == 0 then return false end
	local m = items[1]
	local rem = redis.call('ZREM', akey, m)
	if rem == 1 then
	  redis.call('LPUSH', pkey, m)
	  return m
	end
	return false
	`,
)

// Enqueue pushes a task ID onto the pending queue.
func Enqueue(ctx context.Context, rdb redis.UniversalClient, k keys.Set, id string) error {
	return rdb.LPush(ctx, k.Pending, id).Err()
}

// Dequeue atomically moves one task ID from the Pending list to the Active
// ZSET with a visibility lease of ttl, and returns it. It returns "" when the
// queue is empty.
func Dequeue(ctx context.Context, rdb redis.UniversalClient, k keys.Set, ttl time.Duration) (string, error) {
	expire := time.Now().Add(ttl).Unix()
	res, err := dequeueScript.Run(ctx, rdb, []string{k.Pending, k.Active}, strconv.FormatInt(expire, 10)).Result()
	if err == redis.Nil || res == nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	switch v := res.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", nil
	}
}

// Ack removes a task ID from the Active ZSET after processing finished.
func Ack(ctx context.Context, rdb redis.UniversalClient, k keys.Set, id string) error {
	return rdb.ZRem(ctx, k.Active, id).Err()
}

// ReclaimOne returns one lease-expired task ID to the pending queue. It
// returns the reclaimed ID, or "" when nothing was due.
func ReclaimOne(ctx context.Context, rdb redis.UniversalClient, k keys.Set, now time.Time) (string, error) {
	res, err := reclaimOneScript.Run(ctx, rdb, []string{k.Active, k.Pending}, strconv.FormatInt(now.Unix(), 10)).Result()
	if err == redis.Nil || res == nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	switch v := res.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", nil
	}
}

// Remove drops a task ID from both queue structures. Used by delete so a
// removed task is not handed to a worker afterwards.
func Remove(ctx context.Context, rdb redis.UniversalClient, k keys.Set, id string) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, k.Pending, 0, id)
		p.ZRem(ctx, k.Active, id)
		return nil
	})
	return err
}
