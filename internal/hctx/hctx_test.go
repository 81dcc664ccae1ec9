package hctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_ProgressClamped(t *testing.T) {
	s := New()
	require.Equal(t, 0, s.Progress())

	s.SetProgress(42)
	require.Equal(t, 42, s.Progress())
	s.SetProgress(-5)
	require.Equal(t, 0, s.Progress())
	s.SetProgress(250)
	require.Equal(t, 100, s.Progress())
}

func TestFrom(t *testing.T) {
	_, ok := From(context.Background())
	require.False(t, ok)

	s := New()
	ctx := WithState(context.Background(), s)
	got, ok := From(ctx)
	require.True(t, ok)
	require.Same(t, s, got)
}
