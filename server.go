package vidq

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidq/vidq-go/internal/hctx"
	rtm "github.com/vidq/vidq-go/internal/runtime"
)

// ServerConfig defines the configuration for a worker-role server.
type ServerConfig struct {
	// Namespace isolates all keys of one deployment. Empty means
	// DefaultNamespace; it must match the API role's namespace.
	Namespace string
	// Concurrency is the number of worker goroutines. Defaults to 1.
	Concurrency int
	// VisibilityTTL is the duration for which a dequeued task is leased.
	// If the worker crashes, the task is requeued after this TTL.
	// Defaults to 5 minutes.
	VisibilityTTL time.Duration
	// RunTimeout bounds one downloader invocation; on expiry the task is
	// forced to FAILURE. Defaults to 30 minutes.
	RunTimeout time.Duration
	// DownloadDir is where artifacts are written. Defaults to "downloads".
	DownloadDir string
	// HistoryLimit caps the history index, see StoreConfig.
	HistoryLimit int64
	// Logger is the logger used for worker events.
	Logger Logger
}

// Server is the worker role: it consumes queued tasks, drives each through
// STARTED/PROCESSING to a terminal state, and invokes the external downloader.
// Start is non-blocking; Start/Stop are idempotent.
type Server struct {
	rt         *rtm.Runtime
	store      *Store
	dl         Downloader
	log        Logger
	runTimeout time.Duration
	dir        string
}

type rtLogger struct{ Logger }

// NewServer creates a worker-role server on the given Redis connection.
func NewServer(rdb redis.UniversalClient, cfg ServerConfig, d Downloader) *Server {
	l := cfg.Logger
	if l == nil {
		l = NewFmtLogger()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.VisibilityTTL <= 0 {
		cfg.VisibilityTTL = 5 * time.Minute
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}

	store := NewStore(rdb, StoreConfig{Namespace: cfg.Namespace, HistoryLimit: cfg.HistoryLimit})
	s := &Server{
		store:      store,
		dl:         d,
		log:        l,
		runTimeout: cfg.RunTimeout,
		dir:        cfg.DownloadDir,
	}
	rtc := rtm.Config{
		Keys:          store.Keys(),
		Concurrency:   cfg.Concurrency,
		VisibilityTTL: cfg.VisibilityTTL,
		Logger:        rtLogger{Logger: l},
	}
	s.rt = rtm.New(rdb, rtc, s.process)
	return s
}

// Start launches the worker pool and the lease reclaimer. Non-blocking.
func (s *Server) Start() {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Errorf("create download dir %q: %v", s.dir, err)
	}
	s.rt.Start()
}

// Stop waits for in-flight tasks to be released and all goroutines to exit.
func (s *Server) Stop() { s.rt.Stop() }

// process drives a single dequeued task through its state machine. Errors in
// one task are contained to that task's terminal state and never abort the
// worker loop.
func (s *Server) process(ctx context.Context, id string) error {
	t, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrTaskNotFound) {
		// Deleted while queued; nothing to do.
		s.log.Debugf("skipping deleted task: id=%s", id)
		return nil
	}
	if err != nil {
		return err
	}
	if t.Status.Terminal() {
		// A reclaimed duplicate that already finished elsewhere.
		return nil
	}

	t.Status = StatusStarted
	t.StartedAt = time.Now().UnixMilli()
	if ok, err := s.store.PutIfRunning(ctx, t); err != nil || !ok {
		return err
	}

	t.Status = StatusProcessing
	if ok, err := s.store.PutIfRunning(ctx, t); err != nil || !ok {
		return err
	}
	s.log.Infof("processing: id=%s url=%s", t.ID, t.URL)

	st := hctx.New()
	dctx, cancel := context.WithTimeout(hctx.WithState(ctx, st), s.runTimeout)
	defer cancel()

	// Snapshot for the flusher; the main goroutine does not touch it.
	snap := *t
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.flushProgress(ctx, snap, st, done)
	}()

	res, derr := s.dl.Download(dctx, DownloadRequest{
		URL:        t.URL,
		OutputDir:  s.dir,
		OutputStem: t.ID,
		AudioOnly:  t.AudioOnly,
		Format:     t.Format,
	})
	close(done)
	wg.Wait()

	t.CompletedAt = time.Now().UnixMilli()
	if derr != nil {
		msg := derr.Error()
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			msg = "download timed out after " + s.runTimeout.String()
		}
		t.Status = StatusFailure
		t.Details = &Details{Error: msg}
		t.DownloadURL = ""
		t.FilePath = ""
		if _, err := s.store.PutIfRunning(ctx, t); err != nil {
			return err
		}
		s.log.Warnf("download failed: id=%s url=%s err=%v", t.ID, t.URL, derr)
		return nil
	}

	t.Status = StatusSuccess
	t.Details = &Details{OriginalFilename: res.OriginalFilename}
	t.DownloadURL = "/download/" + t.ID
	t.FilePath = res.FilePath
	t.Progress = 100
	written, err := s.store.PutIfRunning(ctx, t)
	if err != nil {
		return err
	}
	if !written {
		// Deleted mid-run; do not leave a dangling artifact.
		if rmErr := os.Remove(res.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Warnf("orphan artifact cleanup failed: id=%s err=%v", t.ID, rmErr)
		}
		return nil
	}
	s.log.Infof("completed: id=%s file=%q", t.ID, res.OriginalFilename)
	return nil
}

// flushProgress periodically writes downloader-reported progress into the
// record so pollers can render it.
func (s *Server) flushProgress(ctx context.Context, snap Task, st *hctx.State, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	last := -1
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p := st.Progress()
			if p == last {
				continue
			}
			last = p
			cp := snap
			cp.Progress = p
			if _, err := s.store.PutIfRunning(ctx, &cp); err != nil {
				s.log.Debugf("progress flush failed: id=%s err=%v", snap.ID, err)
			}
		}
	}
}
