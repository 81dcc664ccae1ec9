package vidq

// Details carries the free-form result payload of a task.
// On success it holds at least the original filename of the downloaded media;
// on failure it holds a human-readable error description.
type Details struct {
	// OriginalFilename is the human-readable filename derived from the media
	// title. Set together with the SUCCESS transition.
	OriginalFilename string `json:"original_filename,omitempty"`
	// Error describes why the download failed. Set together with the FAILURE
	// transition.
	Error string `json:"error,omitempty"`
}

// Task represents one user-submitted download request and its tracked
// lifecycle. It is serialized to JSON and stored in Redis as a full record;
// every write replaces the whole record so readers never observe a
// half-applied update.
type Task struct {
	// ID is the unique identifier for the task. Assigned at creation,
	// immutable, never reused.
	ID string `json:"task_id"`
	// URL is the source media URL submitted by the client.
	URL string `json:"url"`
	// Status is the current lifecycle state, see states.go.
	Status Status `json:"status"`
	// Details holds the result payload once the task is terminal.
	Details *Details `json:"details,omitempty"`
	// DownloadURL points to the retrievable artifact. Present only when
	// Status is SUCCESS.
	DownloadURL string `json:"download_url,omitempty"`
	// FilePath is the server-side path of the produced artifact, used by the
	// download endpoint and by delete. Present only when Status is SUCCESS.
	FilePath string `json:"file_path,omitempty"`
	// AudioOnly requests audio extraction instead of the full video.
	AudioOnly bool `json:"audio_only,omitempty"`
	// Format is an optional format directive passed to the downloader.
	Format string `json:"format,omitempty"`
	// Progress is the current download progress (0..100).
	Progress int `json:"progress,omitempty"`
	// CreatedAt is the timestamp (ms) when the task was created. It is the
	// ordering key for history listings.
	CreatedAt int64 `json:"created_at"`
	// StartedAt is the timestamp (ms) when a worker claimed the task.
	StartedAt int64 `json:"started_at,omitempty"`
	// CompletedAt is the timestamp (ms) when the task reached a terminal state.
	CompletedAt int64 `json:"completed_at,omitempty"`
}
