// Package manager implements the Model Manager: an LRU of up to N loaded
// [runner.Runner] instances, with single-flight loading so concurrent
// demand for the same not-yet-loaded pair triggers exactly one load.
//
// Grounded on quickmt/manager.py's ModelManager (an OrderedDict-as-LRU plus
// a dict of asyncio.Event-guarded pending loads), translated to Go's
// container/list-backed LRU idiom (as in the per-runner result cache) with
// golang.org/x/sync/singleflight standing in for the per-pair completion
// event — singleflight alone has no notion of LRU admission or eviction
// order, so that bookkeeping is kept explicit around the singleflight call.
package manager

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lingaserve/lingaserve/internal/inference"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/runner"
	"github.com/lingaserve/lingaserve/internal/tokenizer"
)

// Catalogue is the subset of the model registry the manager depends on.
type Catalogue interface {
	Resolve(src, tgt string) (langpair.Descriptor, bool)
	Artifact(ctx context.Context, desc langpair.Descriptor) (string, error)
	LanguagePairs() map[string][]string
}

// ModelInfo describes one catalogue entry plus its current LRU membership,
// as reported by [Manager.ListModels].
type ModelInfo struct {
	Descriptor langpair.Descriptor
	Loaded     bool
}

// entry is the LRU list element payload.
type entry struct {
	pair   langpair.Pair
	runner *runner.Runner
}

// Manager maintains the LRU of loaded runners.
type Manager struct {
	capacity   int
	catalogue  Catalogue
	runnerCfg  runner.Config
	loadAdapter inference.Loader
	loadTokenizers tokenizer.Loader

	sf singleflight.Group

	mu    sync.Mutex
	ll    *list.List // front = MRU, back = LRU
	items map[langpair.Pair]*list.Element
}

// New constructs a Manager bounded to capacity loaded runners.
func New(capacity int, catalogue Catalogue, runnerCfg runner.Config, loadAdapter inference.Loader, loadTokenizers tokenizer.Loader) *Manager {
	if capacity <= 0 {
		capacity = 1
	}
	return &Manager{
		capacity:       capacity,
		catalogue:      catalogue,
		runnerCfg:      runnerCfg,
		loadAdapter:    loadAdapter,
		loadTokenizers: loadTokenizers,
		ll:             list.New(),
		items:          make(map[langpair.Pair]*list.Element),
	}
}

// Get returns the runner for (src, tgt), loading it if necessary. Concurrent
// callers requesting the same not-yet-loaded pair share exactly one load.
func (m *Manager) Get(ctx context.Context, src, tgt string) (*runner.Runner, error) {
	pair := langpair.Pair{Src: src, Tgt: tgt}

	if r, ok := m.lookup(pair); ok {
		return r, nil
	}

	v, err, _ := m.sf.Do(pair.String(), func() (any, error) {
		return m.load(ctx, pair)
	})
	if err != nil {
		return nil, err
	}
	return v.(*runner.Runner), nil
}

// lookup returns the runner for pair if already loaded, promoting it to MRU.
func (m *Manager) lookup(pair langpair.Pair) (*runner.Runner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[pair]
	if !ok {
		return nil, false
	}
	m.ll.MoveToFront(el)
	return el.Value.(*entry).runner, true
}

// load resolves, fetches, and starts a runner for pair, evicting the LRU
// tail first if the manager is at capacity. Invoked at most once per pair
// at a time via m.sf.
func (m *Manager) load(ctx context.Context, pair langpair.Pair) (*runner.Runner, error) {
	// An earlier singleflight call for this same pair may have finished and
	// inserted it between the caller's lookup and this call starting.
	if r, ok := m.lookup(pair); ok {
		return r, nil
	}

	desc, ok := m.catalogue.Resolve(pair.Src, pair.Tgt)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, pair)
	}

	artifactDir, err := m.catalogue.Artifact(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("manager: fetch artifact for %s: %w", pair, err)
	}
	desc.ArtifactRef = artifactDir

	evicted := m.evictIfFull()
	if evicted != nil {
		if err := evicted.runner.Stop(ctx); err != nil {
			slog.Warn("manager: error stopping evicted runner", "pair", evicted.pair, "err", err)
		}
	}

	r := runner.New(desc, m.runnerCfg)
	if err := r.Start(ctx, m.loadAdapter, m.loadTokenizers); err != nil {
		return nil, fmt.Errorf("manager: start runner for %s: %w", pair, err)
	}

	m.mu.Lock()
	el := m.ll.PushFront(&entry{pair: pair, runner: r})
	m.items[pair] = el
	m.mu.Unlock()

	return r, nil
}

// evictIfFull pops the LRU tail if the manager is at capacity, returning
// the evicted entry (nil if nothing was evicted).
func (m *Manager) evictIfFull() *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ll.Len() < m.capacity {
		return nil
	}
	tail := m.ll.Back()
	if tail == nil {
		return nil
	}
	m.ll.Remove(tail)
	ev := tail.Value.(*entry)
	delete(m.items, ev.pair)
	return ev
}

// ListModels reports every catalogue entry alongside its current LRU
// membership.
func (m *Manager) ListModels(descriptors []langpair.Descriptor) []ModelInfo {
	m.mu.Lock()
	loaded := make(map[langpair.Pair]bool, len(m.items))
	for p := range m.items {
		loaded[p] = true
	}
	m.mu.Unlock()

	out := make([]ModelInfo, len(descriptors))
	for i, d := range descriptors {
		out[i] = ModelInfo{Descriptor: d, Loaded: loaded[d.Pair()]}
	}
	return out
}

// LanguagePairs delegates to the catalogue.
func (m *Manager) LanguagePairs() map[string][]string {
	return m.catalogue.LanguagePairs()
}

// Shutdown stops every loaded runner and clears the LRU. Idempotent.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	entries := make([]*entry, 0, m.ll.Len())
	for el := m.ll.Front(); el != nil; el = el.Next() {
		entries = append(entries, el.Value.(*entry))
	}
	m.ll.Init()
	m.items = make(map[langpair.Pair]*list.Element)
	m.mu.Unlock()

	var firstErr error
	for _, e := range entries {
		if err := e.runner.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
