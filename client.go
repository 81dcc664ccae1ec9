package vidq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vidq/vidq-go/internal/worker"
)

// ClientConfig configures the API-side client.
type ClientConfig struct {
	// Namespace isolates all keys of one deployment. Empty means
	// DefaultNamespace.
	Namespace string
	// DownloadDir is the directory holding produced artifacts. Delete refuses
	// to remove files outside of it.
	DownloadDir string
	// HistoryLimit caps the history index, see StoreConfig.
	HistoryLimit int64
}

// Client is the synchronous facade over the task store and the queue: it
// creates task records, enqueues them for the worker role, and serves reads,
// history and deletes. It is safe for concurrent use.
type Client struct {
	rdb         redis.UniversalClient
	store       *Store
	downloadDir string
}

// NewClient creates a new client on the given Redis connection.
func NewClient(rdb redis.UniversalClient, cfg ClientConfig) *Client {
	return &Client{
		rdb: rdb,
		store: NewStore(rdb, StoreConfig{
			Namespace:    cfg.Namespace,
			HistoryLimit: cfg.HistoryLimit,
		}),
		downloadDir: cfg.DownloadDir,
	}
}

// Store exposes the underlying task store.
func (c *Client) Store() *Store { return c.store }

// Create validates the URL, writes a PENDING record and enqueues the task for
// the worker role. It returns immediately; completion is observed by polling
// Get. It returns ErrEmptyURL for a missing or blank URL.
func (c *Client) Create(ctx context.Context, url string, opts ...Option) (*Task, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}

	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	} else {
		exists, err := c.store.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateTask
		}
	}

	t := &Task{
		ID:        id,
		URL:       url,
		Status:    StatusPending,
		AudioOnly: cfg.audioOnly,
		Format:    cfg.format,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := c.store.Put(ctx, t); err != nil {
		return nil, err
	}
	if err := worker.Enqueue(ctx, c.rdb, c.store.Keys(), id); err != nil {
		// Roll back the record so no unqueued PENDING task lingers.
		_ = c.store.Delete(ctx, id)
		return nil, err
	}
	return t, nil
}

// Get returns the current record for the given task ID, or ErrTaskNotFound.
func (c *Client) Get(ctx context.Context, id string) (*Task, error) {
	return c.store.Get(ctx, id)
}

// History returns all known tasks newest-first.
func (c *Client) History(ctx context.Context) ([]*Task, error) {
	return c.store.List(ctx)
}

// Delete removes the task record, its queue entries and the artifact file it
// references. After it returns, neither a dangling record nor a dangling
// artifact remains. It returns ErrTaskNotFound for an unknown ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	t, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.FilePath != "" {
		if err := c.removeArtifact(t.FilePath); err != nil {
			return err
		}
	}
	if err := worker.Remove(ctx, c.rdb, c.store.Keys(), id); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

// Redownload allocates a new task for the same URL and options as the source
// task and enqueues it fresh. The source record is left untouched. It returns
// ErrTaskNotFound if the source ID is unknown.
func (c *Client) Redownload(ctx context.Context, id string) (*Task, error) {
	src, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if src.AudioOnly {
		opts = append(opts, AudioOnly())
	}
	if src.Format != "" {
		opts = append(opts, Format(src.Format))
	}
	return c.Create(ctx, src.URL, opts...)
}

// removeArtifact deletes the artifact file, refusing paths that escape the
// configured download directory. A file that is already gone is not an error.
func (c *Client) removeArtifact(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if c.downloadDir != "" {
		dir, err := filepath.Abs(c.downloadDir)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return fmt.Errorf("vidq: artifact path %q outside download dir", path)
		}
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
