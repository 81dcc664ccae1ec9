package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidq/vidq-go/internal/keys"
	"github.com/vidq/vidq-go/internal/worker"
)

// Logger is a minimal logging interface used internally by the runtime.
// It mirrors the public logger in the root package to avoid an import cycle.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// Executor processes one dequeued task by ID. It owns every store write for
// that task; an error return means the executor itself could not run, not
// that the task failed.
type Executor func(ctx context.Context, id string) error

type Config struct {
	Keys          keys.Set
	Concurrency   int
	VisibilityTTL time.Duration
	Logger        Logger
}

// Runtime manages the worker pool and the lease reclaimer. Workers pull task
// IDs from the pending queue one at a time; an entry stays leased in the
// active ZSET while its executor runs, and the reclaimer returns
// lease-expired entries to pending so tasks of crashed workers are re-run.
type Runtime struct {
	rdb     redis.UniversalClient
	cfg     Config
	exec    Executor
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	log     Logger
}

// New creates a new background runtime.
func New(rdb redis.UniversalClient, cfg Config, exec Executor) *Runtime {
	ctx, cancel := context.WithCancel(context.Background())
	lg := cfg.Logger
	if lg == nil {
		lg = noopLogger{}
	}
	return &Runtime{
		rdb:    rdb,
		cfg:    cfg,
		exec:   exec,
		ctx:    ctx,
		cancel: cancel,
		log:    lg,
	}
}

// Start launches workers and the reclaimer goroutine. Idempotent.
func (rt *Runtime) Start() {
	rt.mu.Lock()
	if rt.started {
		rt.log.Warnf("runtime already started; ignoring Start()")
		rt.mu.Unlock()
		return
	}
	rt.started = true
	rt.mu.Unlock()
	rt.log.Infof("runtime starting: concurrency=%d", rt.cfg.Concurrency)

	for i := 0; i < rt.cfg.Concurrency; i++ {
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			rt.workerLoop()
		}()
	}

	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()
		rt.reclaimLoop()
	}()
}

// Stop cancels the internal context and waits for all goroutines to exit.
func (rt *Runtime) Stop() {
	rt.mu.Lock()
	if !rt.started {
		rt.log.Warnf("runtime not started; ignoring Stop()")
		rt.mu.Unlock()
		return
	}
	rt.started = false
	rt.mu.Unlock()
	rt.log.Infof("runtime stopping")

	rt.cancel()
	rt.wg.Wait()
}

func (rt *Runtime) workerLoop() {
	for {
		select {
		case <-rt.ctx.Done():
			return
		default:
		}

		id, err := worker.Dequeue(rt.ctx, rt.rdb, rt.cfg.Keys, rt.cfg.VisibilityTTL)
		if err != nil {
			if rt.ctx.Err() != nil {
				return
			}
			rt.log.Warnf("dequeue failed: err=%v", err)
			time.Sleep(250 * time.Millisecond)
			continue
		}
		if id == "" {
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if err := rt.exec(rt.ctx, id); err != nil {
			rt.log.Errorf("executor failed: id=%s err=%v", id, err)
		}
		if err := worker.Ack(rt.ctx, rt.rdb, rt.cfg.Keys, id); err != nil && rt.ctx.Err() == nil {
			rt.log.Errorf("ack failed: id=%s err=%v", id, err)
		}
	}
}

// reclaimLoop moves lease-expired active entries back to pending. This is
// what recovers tasks whose worker process died mid-execution.
func (rt *Runtime) reclaimLoop() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-rt.ctx.Done():
			return
		case <-ticker.C:
			for i := 0; i < 256; i++ {
				id, err := worker.ReclaimOne(rt.ctx, rt.rdb, rt.cfg.Keys, time.Now())
				if err != nil {
					if rt.ctx.Err() == nil {
						rt.log.Warnf("reclaimer failed: err=%v", err)
					}
					break
				}
				if id == "" {
					break
				}
				rt.log.Warnf("reclaimed expired lease: id=%s", id)
			}
		}
	}
}
