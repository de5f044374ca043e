// Package runner implements ModelRunner: one instance per loaded model,
// owning an inference adapter, a tokenizer pair, a bounded request queue, a
// background batching loop, and a per-model result cache.
//
// The batching-loop goroutine owns all of a runner's mutable scheduling
// state itself: a single goroutine reads from a channel and is the only
// writer of its own batching state, so no separate lock is needed around
// the queue/batch-in-progress data.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lingaserve/lingaserve/internal/inference"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/segment"
	"github.com/lingaserve/lingaserve/internal/tokenizer"
)

// State is the lifecycle state of a [Runner].
type State int

const (
	StateLoading State = iota
	StateReady
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrQueueFull is returned by [Runner.Translate] when the runner is
// configured to fail fast and its queue is at capacity.
var ErrQueueFull = errors.New("runner: queue full")

// ErrClosed is returned when a job is submitted to a runner that is
// draining or closed.
var ErrClosed = errors.New("runner: closed")

// Config tunes a [Runner]'s batching behaviour.
type Config struct {
	// MaxBatchSize bounds how many jobs one adapter call processes.
	MaxBatchSize int
	// BatchTimeout bounds how long the batcher waits to opportunistically
	// coalesce further jobs once the first job in a batch has arrived.
	BatchTimeout time.Duration
	// QueueSize bounds the runner's job queue.
	QueueSize int
	// CacheSize bounds the per-runner translation-result cache.
	CacheSize int
	// FailFast, when true, makes Translate return [ErrQueueFull] instead of
	// blocking when the queue is at capacity.
	FailFast bool
	// LoadOpts is forwarded to the adapter loader.
	LoadOpts inference.LoadOptions
	// Segmenter splits each batch's source texts into sentences before
	// tokenization and rejoins translated sentences afterward, so that one
	// adapter call can span the sentences of several jobs at once. Defaults
	// to [segment.PunctDetector] when nil.
	Segmenter segment.Detector
}

// job is one unit of scheduling work. A nil *job value (sentinel) tells the
// batcher to drain and exit.
type job struct {
	srcText string
	srcLang string
	tgtLang string
	params  langpair.Params

	resultCh chan jobResult
}

type jobResult struct {
	text string
	err  error
}

// batchKey groups jobs the batcher may legally coalesce into one adapter
// call — matching (src_lang, tgt_lang, params_canonical) exactly.
func (j *job) batchKey() string {
	return j.srcLang + "\x00" + j.tgtLang + "\x00" + j.params.Canonical()
}

// Runner is a loaded model plus its serving machinery.
type Runner struct {
	Descriptor langpair.Descriptor

	cfg        Config
	adapter    inference.Adapter
	tokenizers tokenizer.Pair
	cache      *resultCache

	queue chan *job
	done  chan struct{} // closed once the batcher goroutine exits

	mu    sync.Mutex
	state State
}

// New constructs a Runner in [StateLoading]. Call [Runner.Start] before
// submitting any jobs.
func New(desc langpair.Descriptor, cfg Config) *Runner {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 32
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 5 * time.Millisecond
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10000
	}
	if cfg.Segmenter == nil {
		cfg.Segmenter = segment.PunctDetector{}
	}
	return &Runner{
		Descriptor: desc,
		cfg:        cfg,
		cache:      newResultCache(cfg.CacheSize),
		queue:      make(chan *job, cfg.QueueSize),
		done:       make(chan struct{}),
		state:      StateLoading,
	}
}

// Start loads the adapter and tokenizers and transitions to [StateReady],
// launching the background batching loop. Loading is blocking; callers must
// invoke Start off any latency-sensitive path (it is invoked from the model
// manager's background load task, never from an HTTP request goroutine).
func (r *Runner) Start(ctx context.Context, loadAdapter inference.Loader, loadTokenizers tokenizer.Loader) error {
	adapter, err := loadAdapter(ctx, r.Descriptor.ArtifactRef, r.cfg.LoadOpts)
	if err != nil {
		return fmt.Errorf("runner: load adapter for %s: %w", r.Descriptor.ID, err)
	}
	tok, err := loadTokenizers(ctx, r.Descriptor.ArtifactRef)
	if err != nil {
		_ = adapter.Release()
		return fmt.Errorf("runner: load tokenizers for %s: %w", r.Descriptor.ID, err)
	}

	r.adapter = adapter
	r.tokenizers = tok

	r.mu.Lock()
	r.state = StateReady
	r.mu.Unlock()

	go r.batchLoop()
	return nil
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Translate submits one sentence for translation and blocks until it is
// resolved. On a cache hit it returns immediately without touching the
// queue. The cache is checked only at submission time, never inside the
// batcher, so an in-flight equivalent job still produces a second
// inference call.
func (r *Runner) Translate(ctx context.Context, srcText, srcLang, tgtLang string, params langpair.Params) (string, error) {
	fp := langpair.NewFingerprint(srcText, srcLang, tgtLang, params)
	if v, ok := r.cache.get(fp); ok {
		return v, nil
	}

	r.mu.Lock()
	if r.state != StateReady {
		r.mu.Unlock()
		return "", ErrClosed
	}
	r.mu.Unlock()

	j := &job{
		srcText:  srcText,
		srcLang:  srcLang,
		tgtLang:  tgtLang,
		params:   params,
		resultCh: make(chan jobResult, 1),
	}

	if r.cfg.FailFast {
		select {
		case r.queue <- j:
		default:
			return "", ErrQueueFull
		}
	} else {
		select {
		case r.queue <- j:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	select {
	case res := <-j.resultCh:
		if res.err != nil {
			return "", res.err
		}
		r.cache.put(fp, res.text)
		return res.text, nil
	case <-ctx.Done():
		// The job is orphaned: the batcher will still run it to completion
		// and resolve resultCh, but nothing reads it again. In-batch adapter
		// calls are uninterruptible, so the result is silently dropped here.
		return "", ctx.Err()
	}
}

// Stop transitions the runner through Draining to Closed: it pushes a
// sentinel onto the queue, waits for the batcher to drain and exit, then
// releases the adapter. Safe to call once; the queue is guaranteed empty by
// the time Stop returns.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateClosed {
		r.mu.Unlock()
		return nil
	}
	r.state = StateDraining
	r.mu.Unlock()

	select {
	case r.queue <- nil:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var err error
	if r.adapter != nil {
		err = r.adapter.Release()
	}

	r.mu.Lock()
	r.state = StateClosed
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("runner: release adapter for %s: %w", r.Descriptor.ID, err)
	}
	return nil
}

// logger returns a logger scoped to this runner's model ID.
func (r *Runner) logger() *slog.Logger {
	return slog.Default().With("model_id", r.Descriptor.ID)
}
