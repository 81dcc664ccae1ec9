package vidq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidq/vidq-go/internal/hctx"
)

func TestReportProgress(t *testing.T) {
	// Without runtime state it is a silent no-op.
	ReportProgress(context.Background(), 50)

	st := hctx.New()
	ctx := hctx.WithState(context.Background(), st)
	ReportProgress(ctx, 50)
	require.Equal(t, 50, st.Progress())
	ReportProgress(ctx, 120)
	require.Equal(t, 100, st.Progress())
}
