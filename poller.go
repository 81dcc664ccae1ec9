package vidq

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Getter is the read side a poller needs; *Client satisfies it.
type Getter interface {
	Get(ctx context.Context, id string) (*Task, error)
}

// PollerConfig defines the configuration for a Poller.
type PollerConfig struct {
	// Interval between polls of one task. Defaults to 3 seconds.
	Interval time.Duration
	// OnUpdate is called with every observed record, terminal ones included.
	OnUpdate func(*Task)
	// Logger is the logger used for poll events.
	Logger Logger
}

// Poller repeatedly fetches task state until terminal. It owns an explicit
// registry keyed by task ID: Watch is a no-op for an already-watched ID, so
// repeated UI events never accumulate duplicate timers, and stopped timers
// are provably removed. A transient poll error does not stop polling; only a
// terminal status, a vanished task or an explicit Unwatch/Close does.
type Poller struct {
	getter   Getter
	interval time.Duration
	onUpdate func(*Task)
	log      Logger

	mu       sync.Mutex
	watchers map[string]*watch
	closed   bool
	wg       sync.WaitGroup
}

type watch struct {
	cancel context.CancelFunc
}

// NewPoller creates a poller over the given Getter.
func NewPoller(g Getter, cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	l := cfg.Logger
	if l == nil {
		l = NewFmtLogger()
	}
	onUpdate := cfg.OnUpdate
	if onUpdate == nil {
		onUpdate = func(*Task) {}
	}
	return &Poller{
		getter:   g,
		interval: interval,
		onUpdate: onUpdate,
		log:      l,
		watchers: make(map[string]*watch),
	}
}

// Watch starts polling the given task ID. It is a no-op if the ID is already
// being watched or the poller is closed.
func (p *Poller) Watch(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, ok := p.watchers[id]; ok {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{cancel: cancel}
	p.watchers[id] = w
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx, id, w)
	}()
}

// Unwatch stops polling the given task ID. No-op for unknown IDs.
func (p *Poller) Unwatch(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.watchers[id]; ok {
		w.cancel()
		delete(p.watchers, id)
	}
}

// Watching reports whether the given task ID is currently polled.
func (p *Poller) Watching(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.watchers[id]
	return ok
}

// Close stops all polling and waits for the loops to exit.
func (p *Poller) Close() {
	p.mu.Lock()
	p.closed = true
	for id, w := range p.watchers {
		w.cancel()
		delete(p.watchers, id)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, id string, w *watch) {
	if p.poll(ctx, id) {
		p.remove(id, w)
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.poll(ctx, id) {
				p.remove(id, w)
				return
			}
		}
	}
}

// poll fetches once and reports whether polling of this ID should stop.
func (p *Poller) poll(ctx context.Context, id string) bool {
	t, err := p.getter.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			p.log.Debugf("poll: task gone, stopping: id=%s", id)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		// Transient failure; keep the timer, retry next interval.
		p.log.Warnf("poll failed: id=%s err=%v", id, err)
		return false
	}
	p.onUpdate(t)
	return t.Status.Terminal()
}

// remove deletes this loop's own registry entry. A newer watch registered
// under the same ID after an Unwatch is left alone.
func (p *Poller) remove(id string, w *watch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.watchers[id]; ok && cur == w {
		cur.cancel()
		delete(p.watchers, id)
	}
}
