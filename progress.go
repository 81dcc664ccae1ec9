package vidq

import (
	"context"

	"github.com/vidq/vidq-go/internal/hctx"
)

// ReportProgress allows a downloader to report progress (0..100) for the
// current task. The worker flushes reported progress into the task record
// while the download runs. It is a no-op if the context is not provided by
// the vidq runtime.
func ReportProgress(ctx context.Context, p int) {
	st, ok := hctx.From(ctx)
	if !ok || st == nil {
		return
	}
	st.SetProgress(p)
}
