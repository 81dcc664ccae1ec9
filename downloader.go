package vidq

import "context"

// DownloadRequest describes one invocation of the external downloader.
type DownloadRequest struct {
	// URL is the source media URL.
	URL string
	// OutputDir is the directory the artifact must be written into.
	OutputDir string
	// OutputStem is the base name (without extension) the artifact must use.
	// The worker passes the task ID so artifacts are addressable by task.
	OutputStem string
	// AudioOnly requests audio extraction instead of the full video.
	AudioOnly bool
	// Format is an optional format directive (tool-specific).
	Format string
}

// DownloadResult reports what the downloader produced.
type DownloadResult struct {
	// FilePath is the path of the produced artifact.
	FilePath string
	// OriginalFilename is the human-readable filename derived from the media
	// title.
	OriginalFilename string
}

// Downloader is the external collaborator invoked by the worker. It is the
// single long-blocking operation in the system; implementations must honor
// ctx cancellation and may report progress via ReportProgress.
type Downloader interface {
	Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error)
}

// DownloaderFunc adapts a function to the Downloader interface.
type DownloaderFunc func(ctx context.Context, req DownloadRequest) (*DownloadResult, error)

func (f DownloaderFunc) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	return f(ctx, req)
}
