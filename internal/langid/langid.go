// Package langid implements a pool of CPU-bound workers performing language
// identification, grounded on quickmt/langid.py's fasttext wrapper. The
// source used OS processes to sidestep Python's GIL; Go has no such
// constraint, so this pool uses goroutines each owning their own classifier
// instance, while preserving the source's contract: the model is loaded
// once in the main process before workers start, each worker loads (or
// receives) its own instance, and every input is newline-sanitized before
// classification.
package langid

import (
	"context"
	"strings"
	"sync"
)

// Unknown is the label reported when no classification meets the threshold.
const (
	Unknown = "unknown"
)

// Result pairs a language code with its classifier confidence score.
type Result struct {
	Lang  string
	Score float64
}

// Classifier performs language identification for a batch of strings. A
// production implementation wraps a loaded fastText-style model; tests use a
// fake.
type Classifier interface {
	// Predict returns up to k (lang, score) results per input text, ordered
	// by descending score. Implementations must tolerate already
	// newline-stripped input.
	Predict(texts []string, k int) ([][]Result, error)
}

// ClassifierFactory constructs one [Classifier] instance per worker. It is
// called once per worker goroutine at pool startup, mirroring langid.py's
// init_worker, which is invoked once per worker process.
type ClassifierFactory func() (Classifier, error)

// job is one unit of work submitted to the pool.
type job struct {
	texts     []string
	k         int
	threshold float64
	replyCh   chan jobReply
}

type jobReply struct {
	results [][]Result
	err     error
}

// Pool is a fixed-size pool of goroutines, each holding its own [Classifier].
// The pool distributes whole request-batches across workers; a single
// worker serializes the batches it receives.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	workers int

	closeOnce sync.Once
	closed    chan struct{}
}

// New starts a pool of `workers` goroutines, each constructed via factory.
// factory must not be called concurrently with itself by callers — New
// calls it once per worker, sequentially, before returning, so that a
// factory which lazily downloads a shared model file (as langid.py's
// ensure_model_exists does) only races during the pool's own construction,
// never after.
func New(ctx context.Context, workers int, factory ClassifierFactory) (*Pool, error) {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		jobs:    make(chan job, workers*4),
		workers: workers,
		closed:  make(chan struct{}),
	}

	classifiers := make([]Classifier, workers)
	for i := 0; i < workers; i++ {
		c, err := factory()
		if err != nil {
			return nil, err
		}
		classifiers[i] = c
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(classifiers[i])
	}
	return p, nil
}

func (p *Pool) worker(c Classifier) {
	defer p.wg.Done()
	for j := range p.jobs {
		if j.texts == nil && j.replyCh == nil {
			// Sentinel: stop.
			return
		}
		sanitized := make([]string, len(j.texts))
		for i, t := range j.texts {
			sanitized[i] = strings.ReplaceAll(t, "\n", " ")
		}
		results, err := c.Predict(sanitized, j.k)
		if err != nil {
			j.replyCh <- jobReply{err: err}
			continue
		}
		for i := range results {
			filtered := make([]Result, 0, len(results[i]))
			for _, r := range results[i] {
				if r.Score >= j.threshold {
					filtered = append(filtered, r)
				}
			}
			if len(filtered) == 0 {
				filtered = []Result{{Lang: Unknown, Score: 0.0}}
			}
			results[i] = filtered
		}
		j.replyCh <- jobReply{results: results}
	}
}

// Classify submits one batch to the pool and blocks until it is processed.
// Returns k results per input text (fewer if the classifier yields less than
// k above threshold); inputs scoring below threshold fall back to
// ("unknown", 0.0).
func (p *Pool) Classify(ctx context.Context, texts []string, k int, threshold float64) ([][]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	reply := make(chan jobReply, 1)
	select {
	case p.jobs <- job{texts: texts, k: k, threshold: threshold, replyCh: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, ErrPoolClosed
	}

	select {
	case r := <-reply:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Best is a convenience wrapper returning just the top label per input,
// mirroring langid.py's predict_best.
func (p *Pool) Best(ctx context.Context, texts []string, threshold float64) ([]string, error) {
	results, err := p.Classify(ctx, texts, 1, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(results))
	for i, r := range results {
		if len(r) == 0 {
			out[i] = Unknown
			continue
		}
		out[i] = r[0].Lang
	}
	return out, nil
}

// Close stops accepting new work and waits for in-flight batches to finish.
// Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		for i := 0; i < p.workers; i++ {
			p.jobs <- job{}
		}
	})
	p.wg.Wait()
}
