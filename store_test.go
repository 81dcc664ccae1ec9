package vidq

import (
	"context"
	"fmt"
	"testing"

	mrd "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	s := mrd.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	cleanup := func() {
		_ = rdb.Close()
		s.Close()
	}
	return rdb, cleanup
}

func TestStore_PutGet(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})
	ctx := context.Background()

	in := &Task{ID: "t1", URL: "https://example.com/v1", Status: StatusPending, CreatedAt: 1000}
	require.NoError(t, s.Put(ctx, in))

	out, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestStore_Get_NotFound(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStore_List_NewestFirst(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Put(ctx, &Task{
			ID:        fmt.Sprintf("t%d", i),
			URL:       fmt.Sprintf("https://example.com/v%d", i),
			Status:    StatusPending,
			CreatedAt: int64(i * 1000),
		}))
	}

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, "t3", tasks[0].ID)
	require.Equal(t, "t2", tasks[1].ID)
	require.Equal(t, "t1", tasks[2].ID)

	// Repeated calls are deterministic given no mutation.
	again, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, tasks, again)
}

func TestStore_List_Empty(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})

	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tasks)
	require.Len(t, tasks, 0)
}

func TestStore_Delete(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &Task{ID: "t1", URL: "u", Status: StatusPending, CreatedAt: 1}))
	require.NoError(t, s.Delete(ctx, "t1"))

	_, err := s.Get(ctx, "t1")
	require.ErrorIs(t, err, ErrTaskNotFound)

	// A second delete reports NotFound, not success.
	require.ErrorIs(t, s.Delete(ctx, "t1"), ErrTaskNotFound)

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 0)
}

func TestStore_PutIfRunning(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})
	ctx := context.Background()

	tk := &Task{ID: "t1", URL: "u", Status: StatusPending, CreatedAt: 1}
	require.NoError(t, s.Put(ctx, tk))

	// Non-terminal record can be replaced.
	tk.Status = StatusStarted
	ok, err := s.PutIfRunning(ctx, tk)
	require.NoError(t, err)
	require.True(t, ok)

	// Terminal record cannot.
	tk.Status = StatusSuccess
	tk.Details = &Details{OriginalFilename: "clip.mp4"}
	tk.DownloadURL = "/download/t1"
	ok, err = s.PutIfRunning(ctx, tk)
	require.NoError(t, err)
	require.True(t, ok)

	tk2 := *tk
	tk2.Status = StatusProcessing
	ok, err = s.PutIfRunning(ctx, &tk2)
	require.NoError(t, err)
	require.False(t, ok)

	out, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, out.Status)
}

func TestStore_PutIfRunning_DeletedTaskStaysDeleted(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{})
	ctx := context.Background()

	ok, err := s.PutIfRunning(ctx, &Task{ID: "gone", URL: "u", Status: StatusStarted})
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Get(ctx, "gone")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStore_HistoryTrim(t *testing.T) {
	rdb, done := newMiniClient(t)
	defer done()
	s := NewStore(rdb, StoreConfig{HistoryLimit: 2})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Put(ctx, &Task{
			ID:        fmt.Sprintf("t%d", i),
			URL:       "u",
			Status:    StatusPending,
			CreatedAt: int64(i * 1000),
		}))
	}

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "t3", tasks[0].ID)
	require.Equal(t, "t2", tasks[1].ID)

	// The trimmed record is gone entirely, not just unlisted.
	_, err = s.Get(ctx, "t1")
	require.ErrorIs(t, err, ErrTaskNotFound)
}
