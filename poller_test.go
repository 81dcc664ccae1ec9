package vidq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedGetter replays a fixed sequence of results, repeating the last one.
type scriptedGetter struct {
	mu    sync.Mutex
	steps []func() (*Task, error)
	calls int
}

func (g *scriptedGetter) Get(ctx context.Context, id string) (*Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.steps) {
		i = len(g.steps) - 1
	}
	g.calls++
	return g.steps[i]()
}

func taskStep(id string, st Status) func() (*Task, error) {
	return func() (*Task, error) { return &Task{ID: id, URL: "u", Status: st}, nil }
}

func errStep(err error) func() (*Task, error) {
	return func() (*Task, error) { return nil, err }
}

func TestPoller_StopsOnTerminal(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){
		taskStep("t1", StatusPending),
		taskStep("t1", StatusProcessing),
		taskStep("t1", StatusSuccess),
	}}

	var mu sync.Mutex
	var seen []Status
	p := NewPoller(g, PollerConfig{
		Interval: 10 * time.Millisecond,
		OnUpdate: func(tk *Task) {
			mu.Lock()
			seen = append(seen, tk.Status)
			mu.Unlock()
		},
	})
	defer p.Close()

	p.Watch("t1")
	require.Eventually(t, func() bool { return !p.Watching("t1") }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Status{StatusPending, StatusProcessing, StatusSuccess}, seen)
}

func TestPoller_Watch_Idempotent(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){taskStep("t1", StatusPending)}}
	p := NewPoller(g, PollerConfig{Interval: time.Hour})
	defer p.Close()

	p.Watch("t1")
	p.Watch("t1")
	p.Watch("t1")
	require.True(t, p.Watching("t1"))

	// Only the first Watch registered a loop; one immediate poll ran.
	time.Sleep(50 * time.Millisecond)
	g.mu.Lock()
	defer g.mu.Unlock()
	require.Equal(t, 1, g.calls)
}

func TestPoller_StopsWhenTaskVanishes(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){
		taskStep("t1", StatusPending),
		errStep(ErrTaskNotFound),
	}}
	p := NewPoller(g, PollerConfig{Interval: 10 * time.Millisecond})
	defer p.Close()

	p.Watch("t1")
	require.Eventually(t, func() bool { return !p.Watching("t1") }, 2*time.Second, 5*time.Millisecond)
}

func TestPoller_TransientErrorKeepsPolling(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){
		errStep(errors.New("connection refused")),
		errStep(errors.New("connection refused")),
		taskStep("t1", StatusSuccess),
	}}

	var got *Task
	var mu sync.Mutex
	p := NewPoller(g, PollerConfig{
		Interval: 10 * time.Millisecond,
		OnUpdate: func(tk *Task) {
			mu.Lock()
			got = tk
			mu.Unlock()
		},
	})
	defer p.Close()

	p.Watch("t1")
	require.Eventually(t, func() bool { return !p.Watching("t1") }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, got)
	require.Equal(t, StatusSuccess, got.Status)
}

func TestPoller_Unwatch(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){taskStep("t1", StatusPending)}}
	p := NewPoller(g, PollerConfig{Interval: time.Hour})
	defer p.Close()

	p.Watch("t1")
	require.True(t, p.Watching("t1"))
	p.Unwatch("t1")
	require.False(t, p.Watching("t1"))

	// Unknown IDs are a no-op.
	p.Unwatch("never-watched")

	// Re-registering after Unwatch starts a fresh loop.
	p.Watch("t1")
	require.True(t, p.Watching("t1"))
}

func TestPoller_Close(t *testing.T) {
	g := &scriptedGetter{steps: []func() (*Task, error){taskStep("t1", StatusPending)}}
	p := NewPoller(g, PollerConfig{Interval: time.Hour})

	p.Watch("t1")
	p.Watch("t2")
	p.Close()
	require.False(t, p.Watching("t1"))
	require.False(t, p.Watching("t2"))

	// Watch after Close is refused.
	p.Watch("t3")
	require.False(t, p.Watching("t3"))
}
