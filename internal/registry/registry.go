// Package registry implements the Model Registry: it enumerates available
// models from a remote catalogue and resolves a language pair to a local
// artifact directory.
//
// Grounded on quickmt/manager.py's fetch_hf_models (catalogue parsing) and
// hub.py's hf_download (artifact file contract and ignore-pattern
// filtering), adapted from huggingface_hub's HfApi/snapshot_download to a
// resty-based HTTP client plus local filesystem cache.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/resilience"
)

// catalogueSource fetches the full set of known descriptors from one
// source (remote HTTP catalogue, local YAML fallback, ...).
type catalogueSource func(ctx context.Context) ([]langpair.Descriptor, error)

// Registry enumerates models and resolves language pairs to artifacts.
type Registry struct {
	client *catalogueClient
	store  *Store // optional, nil disables metadata persistence

	// catalogueSources tries the remote catalogue first, falling back to
	// the local YAML file on failure or an open circuit.
	catalogueSources *resilience.FallbackGroup[catalogueSource]

	// artifactBreaker guards Artifact's single remote source; there is no
	// fallback source for artifact content, so a plain breaker suffices.
	artifactBreaker *resilience.CircuitBreaker

	mu          sync.RWMutex
	descriptors map[langpair.Pair]langpair.Descriptor
}

// Option configures a [Registry] at construction time.
type Option func(*Registry)

// WithStore enables optional metadata persistence to PostgreSQL.
func WithStore(s *Store) Option {
	return func(r *Registry) { r.store = s }
}

// New constructs a Registry pointed at the given remote catalogue URL and
// local fallback catalogue file (either may be empty).
func New(catalogueURL, catalogueFile, cacheDir string, opts ...Option) *Registry {
	client := newCatalogueClient(catalogueURL, catalogueFile, cacheDir)

	sources := resilience.NewFallbackGroup[catalogueSource](
		client.fetchRemote,
		"remote-catalogue",
		resilience.FallbackConfig{CircuitBreaker: resilience.CircuitBreakerConfig{Name: "remote-catalogue"}},
	)
	sources.AddFallback("local-catalogue", func(ctx context.Context) ([]langpair.Descriptor, error) {
		return client.fetchLocal()
	})

	r := &Registry{
		client:           client,
		descriptors:      make(map[langpair.Pair]langpair.Descriptor),
		catalogueSources: sources,
		artifactBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "registry-artifact",
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh fetches the list of available models from the remote catalogue,
// falling back to the local catalogue file if the remote is unavailable or
// its circuit breaker is open. Errors are logged but non-fatal: the
// registry may simply continue to report the models it already knows
// about.
func (r *Registry) Refresh(ctx context.Context) error {
	descs, err := resilience.ExecuteWithResult(r.catalogueSources, func(fetch catalogueSource) ([]langpair.Descriptor, error) {
		return fetch(ctx)
	})
	if err != nil {
		slog.Warn("registry: catalogue refresh failed on every source", "err", err)
		return nil
	}

	r.mu.Lock()
	for _, d := range descs {
		r.descriptors[d.Pair()] = d
	}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveAll(ctx, descs); err != nil {
			slog.Warn("registry: failed to persist catalogue metadata", "err", err)
		}
	}
	return nil
}

// Seed populates the registry's descriptor map directly, without going
// through a catalogue source. Used to warm-start a Registry from persisted
// metadata before its first Refresh completes.
func (r *Registry) Seed(descs []langpair.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range descs {
		r.descriptors[d.Pair()] = d
	}
}

// Resolve returns the descriptor for (src, tgt), if known.
func (r *Registry) Resolve(src, tgt string) (langpair.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[langpair.Pair{Src: src, Tgt: tgt}]
	return d, ok
}

// Artifact ensures the descriptor's artifact is present locally, returning
// its directory path.
func (r *Registry) Artifact(ctx context.Context, desc langpair.Descriptor) (string, error) {
	var path string
	err := r.artifactBreaker.Execute(func() error {
		var fetchErr error
		path, fetchErr = r.client.artifact(ctx, desc)
		return fetchErr
	})
	return path, err
}

// LanguagePairs aggregates known descriptors into src -> sorted [tgt, ...].
func (r *Registry) LanguagePairs() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string)
	for pair := range r.descriptors {
		out[pair.Src] = append(out[pair.Src], pair.Tgt)
	}
	for src := range out {
		sort.Strings(out[src])
	}
	return out
}

// Descriptors returns every known descriptor, sorted by ID for determinism.
func (r *Registry) Descriptors() []langpair.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]langpair.Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
