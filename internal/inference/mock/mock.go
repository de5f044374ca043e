// Package mock provides a test double for [inference.Adapter] that echoes
// its input tokens back, optionally injecting failures and recording call
// counts.
package mock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lingaserve/lingaserve/internal/inference"
)

// Adapter is a fake [inference.Adapter]. By default it echoes each input
// sequence back as the hypothesis (useful for asserting pipeline wiring
// without a real engine). Set Translate to override behaviour.
type Adapter struct {
	// Translate, if non-nil, overrides the default echo behaviour.
	Translate func(ctx context.Context, sequences [][]string, params inference.Params) ([]inference.Hypothesis, error)

	mu       sync.Mutex
	calls    int64
	released bool
}

// New returns an [Adapter] with default echo behaviour.
func New() *Adapter {
	return &Adapter{}
}

// CallCount returns the number of TranslateBatch invocations observed so far.
func (a *Adapter) CallCount() int64 {
	return atomic.LoadInt64(&a.calls)
}

// Released reports whether Release has been called.
func (a *Adapter) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// TranslateBatch implements [inference.Adapter].
func (a *Adapter) TranslateBatch(ctx context.Context, sequences [][]string, params inference.Params) ([]inference.Hypothesis, error) {
	atomic.AddInt64(&a.calls, 1)
	if a.Translate != nil {
		return a.Translate(ctx, sequences, params)
	}
	hyps := make([]inference.Hypothesis, len(sequences))
	for i, seq := range sequences {
		hyps[i] = inference.Hypothesis{Tokens: seq}
	}
	return hyps, nil
}

// Release implements [inference.Adapter].
func (a *Adapter) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return errors.New("mock: already released")
	}
	a.released = true
	return nil
}

// Loader returns an [inference.Loader] that always returns a.
func Loader(a *Adapter) inference.Loader {
	return func(ctx context.Context, artifactDir string, opts inference.LoadOptions) (inference.Adapter, error) {
		return a, nil
	}
}
