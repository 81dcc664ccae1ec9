package hctx

import (
	"context"
	"sync/atomic"
)

// State holds per-execution, downloader-provided progress that the runtime
// flushes into the task record while the download runs. Progress is read and
// written from different goroutines, hence the atomic.
type State struct {
	progress atomic.Int32
}

// New creates a fresh execution state container.
func New() *State { return &State{} }

// SetProgress stores the current progress, clamped to 0..100.
func (s *State) SetProgress(p int) {
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	s.progress.Store(int32(p))
}

// Progress returns the last reported progress.
func (s *State) Progress() int { return int(s.progress.Load()) }

type ctxKey struct{}

// WithState returns a child context carrying the given execution state.
func WithState(parent context.Context, s *State) context.Context {
	return context.WithValue(parent, ctxKey{}, s)
}

// From extracts the execution state from context if present.
func From(ctx context.Context) (*State, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return nil, false
	}
	st, ok := v.(*State)
	return st, ok
}
