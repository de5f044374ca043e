// Package app wires every lingaserve subsystem into a running gateway.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run starts the HTTP listener and blocks until the context is
// cancelled, and Shutdown tears everything down in order.
//
// For testing, inject alternate implementations via functional options
// (WithInferenceLoader, WithLangIDFactory, etc.). When an option is not
// provided, New falls back to the in-repo reference implementations —
// production deployments that have a real inference engine or fastText
// model available inject them the same way.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lingaserve/lingaserve/internal/config"
	"github.com/lingaserve/lingaserve/internal/health"
	"github.com/lingaserve/lingaserve/internal/httpapi"
	"github.com/lingaserve/lingaserve/internal/inference"
	infmock "github.com/lingaserve/lingaserve/internal/inference/mock"
	"github.com/lingaserve/lingaserve/internal/langid"
	langidmock "github.com/lingaserve/lingaserve/internal/langid/mock"
	"github.com/lingaserve/lingaserve/internal/manager"
	"github.com/lingaserve/lingaserve/internal/observe"
	"github.com/lingaserve/lingaserve/internal/orchestrator"
	"github.com/lingaserve/lingaserve/internal/registry"
	"github.com/lingaserve/lingaserve/internal/runner"
	"github.com/lingaserve/lingaserve/internal/tokenizer"
	tokenizermock "github.com/lingaserve/lingaserve/internal/tokenizer/mock"
)

// App owns every subsystem's lifetime and serves the translation gateway's
// HTTP API.
type App struct {
	cfg *config.Config

	// Subsystems — initialised in New, torn down in Shutdown.
	registry    *registry.Registry
	store       *registry.Store
	langIDPool  *langid.Pool
	modelMgr    *manager.Manager
	orch        *orchestrator.Orchestrator
	metrics     *observe.Metrics
	otelStop    func(context.Context) error
	httpServer  *http.Server

	loadAdapter    inference.Loader
	loadTokenizers tokenizer.Loader
	langIDFactory  langid.ClassifierFactory

	// closers are called in reverse order (LIFO) during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject alternate
// subsystem implementations.
type Option func(*App)

// WithInferenceLoader injects the loader used to construct inference
// adapters for newly loaded models. Defaults to the bundled reference
// adapter ([inference/mock]) when not provided, since a real engine binding
// is an external collaborator out of scope for this repository.
func WithInferenceLoader(l inference.Loader) Option {
	return func(a *App) { a.loadAdapter = l }
}

// WithTokenizerLoader injects the loader used to construct tokenizer pairs
// for newly loaded models. Defaults to [tokenizer/mock] when not provided.
func WithTokenizerLoader(l tokenizer.Loader) Option {
	return func(a *App) { a.loadTokenizers = l }
}

// WithLangIDFactory injects the classifier factory used by the language-id
// worker pool. Defaults to a fixed-table fake when not provided.
func WithLangIDFactory(f langid.ClassifierFactory) Option {
	return func(a *App) { a.langIDFactory = f }
}

// WithRegistryStore enables optional Postgres-backed metadata persistence
// for the model registry.
func WithRegistryStore(s *registry.Store) Option {
	return func(a *App) { a.store = s }
}

// New wires every subsystem together and starts the HTTP listener in the
// background. Use Option functions to inject alternate implementations for
// the components that have no in-repo production binding.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Observability ─────────────────────────────────────────────────
	if err := a.initObserve(ctx); err != nil {
		return nil, fmt.Errorf("app: init observability: %w", err)
	}

	// ── 2. Model registry ────────────────────────────────────────────────
	a.initRegistry(ctx)

	// ── 3. Language identification pool ─────────────────────────────────
	if err := a.initLangID(ctx); err != nil {
		return nil, fmt.Errorf("app: init langid: %w", err)
	}

	// ── 4. Model manager ─────────────────────────────────────────────────
	a.initManager()

	// ── 5. Orchestrator ──────────────────────────────────────────────────
	a.orch = orchestrator.New(a.modelMgr, a.langIDPool)

	// ── 6. HTTP server ───────────────────────────────────────────────────
	a.initHTTPServer()

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initObserve sets up the OTel SDK providers (when enabled) and the metrics
// instrument set used by the HTTP middleware.
func (a *App) initObserve(ctx context.Context) error {
	if a.cfg.MetricsEnabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "lingaserve"})
		if err != nil {
			return err
		}
		a.otelStop = shutdown
	}

	// DefaultMetrics binds to the globally registered meter provider, so it
	// picks up the Prometheus-backed one InitProvider just installed (or the
	// OTel no-op provider when metrics are disabled).
	a.metrics = observe.DefaultMetrics()
	return nil
}

// initRegistry constructs the model registry, optionally wired to a
// Postgres metadata store, warm-starts it from any persisted metadata, and
// performs the initial catalogue refresh. Refresh failures are logged and
// non-fatal: the registry simply keeps serving whatever it already knows
// (warm-started or not) until a later refresh succeeds.
func (a *App) initRegistry(ctx context.Context) {
	var opts []registry.Option
	if a.store != nil {
		opts = append(opts, registry.WithStore(a.store))
		a.closers = append(a.closers, func() error { a.store.Close(); return nil })
	}

	a.registry = registry.New(a.cfg.RegistryCatalogueURL, a.cfg.RegistryCatalogueFile, a.cfg.RegistryCacheDir, opts...)

	if a.store != nil {
		descs, err := a.store.Load(ctx)
		if err != nil {
			slog.Warn("app: registry warm-start from store failed", "err", err)
		} else {
			a.registry.Seed(descs)
		}
	}

	if err := a.registry.Refresh(ctx); err != nil {
		slog.Warn("app: initial catalogue refresh failed", "err", err)
	}
}

// initLangID starts the language-identification worker pool.
func (a *App) initLangID(ctx context.Context) error {
	factory := a.langIDFactory
	if factory == nil {
		factory = langidmock.New(nil).Factory()
	}

	pool, err := langid.New(ctx, a.cfg.LangIDWorkers, factory)
	if err != nil {
		return err
	}
	a.langIDPool = pool
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})
	return nil
}

// initManager constructs the model manager's loader defaults and its
// bounded LRU.
func (a *App) initManager() {
	if a.loadAdapter == nil {
		a.loadAdapter = infmock.Loader(infmock.New())
	}
	if a.loadTokenizers == nil {
		a.loadTokenizers = tokenizermock.Loader()
	}

	runnerCfg := runner.Config{
		MaxBatchSize: a.cfg.MaxBatchSize,
		BatchTimeout: a.cfg.BatchTimeout,
		CacheSize:    a.cfg.TranslationCacheSize,
		LoadOpts: inference.LoadOptions{
			Device:       inference.DeviceType(a.cfg.Device),
			ComputeType:  a.cfg.ComputeType,
			InterThreads: a.cfg.InterThreads,
			IntraThreads: a.cfg.IntraThreads,
		},
	}

	a.modelMgr = manager.New(a.cfg.MaxLoadedModels, a.registry, runnerCfg, a.loadAdapter, a.loadTokenizers)
	a.closers = append(a.closers, func() error {
		return a.modelMgr.Shutdown(context.Background())
	})
}

// initHTTPServer builds the route mux (health checks + the /api surface)
// wrapped in the observability middleware, and an *http.Server bound to
// cfg.ListenAddr. The listener itself is started in Run.
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	health.New(health.Checker{
		Name: "registry",
		Check: func(ctx context.Context) error {
			if len(a.registry.Descriptors()) == 0 {
				return errors.New("no models known to the registry yet")
			}
			return nil
		},
	}).Register(mux)

	api := httpapi.New(a.orch, a.langIDPool, a.modelMgr, a.registry, a.cfg.MaxLoadedModels)
	api.Register(mux)

	a.httpServer = &http.Server{
		Addr:    a.cfg.ListenAddr,
		Handler: observe.Middleware(a.metrics)(mux),
	}
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Registry returns the model registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Manager returns the model manager.
func (a *App) Manager() *manager.Manager { return a.modelMgr }

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run starts the HTTP listener and blocks until ctx is cancelled or the
// server stops for any other reason.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("app listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if a.httpServer != nil {
			if err := a.httpServer.Shutdown(ctx); err != nil {
				slog.Warn("http server shutdown error", "err", err)
			}
		}

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		if a.otelStop != nil {
			if err := a.otelStop(ctx); err != nil {
				slog.Warn("otel shutdown error", "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
