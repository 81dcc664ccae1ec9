package vidq

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/vidq/vidq-go/internal/keys"
)

// DefaultNamespace is the Redis namespace shared by the API and worker roles.
const DefaultNamespace = "tasks"

// DefaultHistoryLimit caps how many task records the history index keeps.
const DefaultHistoryLimit = 100

// StoreConfig configures a task store.
type StoreConfig struct {
	// Namespace isolates all keys of one deployment. Empty means
	// DefaultNamespace.
	Namespace string
	// HistoryLimit caps the history index; the oldest records (and their
	// detail entries) are trimmed on Put once the cap is exceeded.
	// Zero means DefaultHistoryLimit; a negative value disables trimming.
	HistoryLimit int64
}

// Store is the durable task record store shared by the API and worker
// processes. Records live in a Redis HASH keyed by task ID, with a ZSET
// scored by creation time providing the newest-first history order. Every
// write replaces the full record, so concurrent readers never observe a
// partially-applied update.
type Store struct {
	rdb   redis.UniversalClient
	enc   Encoder
	k     keys.Set
	limit int64
}

// putIfRunningScript replaces a record only if it still exists and is not
// terminal. It is how worker-side writes avoid resurrecting deleted tasks or
// overwriting a terminal state.
var putIfRunningScript = redis.NewScript(
	// language=Lua
	`
	local raw = redis.call('HGET', KEYS[1], ARGV[1])
	if not raw then return 0 end
	local t = cjson.decode(raw)
	if t['status'] == 'SUCCESS' or t['status'] == 'FAILURE' then return 0 end
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
	`,
)

// NewStore creates a task store on the given Redis connection.
func NewStore(rdb redis.UniversalClient, cfg StoreConfig) *Store {
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	} else if limit < 0 {
		limit = 0
	}
	return &Store{
		rdb:   rdb,
		enc:   &JSONEncoder{},
		k:     keys.For(ns),
		limit: limit,
	}
}

// Keys exposes the store's key set so the queue side can share the namespace.
func (s *Store) Keys() keys.Set { return s.k }

// Put writes the full task record and indexes it in the history ZSET.
func (s *Store) Put(ctx context.Context, t *Task) error {
	raw, err := s.enc.Encode(t)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.k.Details, t.ID, raw)
		p.ZAdd(ctx, s.k.History, redis.Z{Score: float64(t.CreatedAt), Member: t.ID})
		return nil
	})
	if err != nil {
		return err
	}
	return s.trimHistory(ctx)
}

// PutIfRunning replaces the record only if it still exists and is
// non-terminal. It returns false when the task was deleted in the meantime or
// has already reached SUCCESS/FAILURE.
func (s *Store) PutIfRunning(ctx context.Context, t *Task) (bool, error) {
	raw, err := s.enc.Encode(t)
	if err != nil {
		return false, err
	}
	n, err := putIfRunningScript.Run(ctx, s.rdb, []string{s.k.Details}, t.ID, raw).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Get returns the current task record, or ErrTaskNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	raw, err := s.rdb.HGet(ctx, s.k.Details, id).Result()
	if err == redis.Nil {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	var t Task
	if err := s.enc.Decode([]byte(raw), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Exists reports whether a record with the given ID is present.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	return s.rdb.HExists(ctx, s.k.Details, id).Result()
}

// List returns all known tasks newest-first. The order is defined by the
// creation-time score in the history ZSET, so repeated calls are
// deterministic given no intervening mutation.
func (s *Store) List(ctx context.Context) ([]*Task, error) {
	stop := int64(-1)
	if s.limit > 0 {
		stop = s.limit - 1
	}
	ids, err := s.rdb.ZRevRange(ctx, s.k.History, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Task, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := s.rdb.HMGet(ctx, s.k.Details, ids...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var t Task
		if err := s.enc.Decode([]byte(raw), &t); err == nil {
			out = append(out, &t)
		}
	}
	return out, nil
}

// Delete removes the record and its history entry. It returns
// ErrTaskNotFound if the ID is unknown, so a second delete is not reported
// as success.
func (s *Store) Delete(ctx context.Context, id string) error {
	var hdel *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		hdel = p.HDel(ctx, s.k.Details, id)
		p.ZRem(ctx, s.k.History, id)
		return nil
	})
	if err != nil {
		return err
	}
	if hdel.Val() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// trimHistory removes the oldest records beyond the configured cap.
func (s *Store) trimHistory(ctx context.Context) error {
	if s.limit <= 0 {
		return nil
	}
	count, err := s.rdb.ZCard(ctx, s.k.History).Result()
	if err != nil || count <= s.limit {
		return err
	}
	old, err := s.rdb.ZRange(ctx, s.k.History, 0, count-s.limit-1).Result()
	if err != nil || len(old) == 0 {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, s.k.History, toAny(old)...)
		p.HDel(ctx, s.k.Details, old...)
		return nil
	})
	return err
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
