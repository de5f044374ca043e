// Package config provides the configuration schema and loader for the
// lingaserve translation gateway.
//
// Unlike the YAML-file configuration style common elsewhere in this
// codebase, lingaserve's settings are meant to be supplied by the
// environment it runs in (containers, systemd units, process managers), so
// [Load] reads from environment variables — case-insensitively — with an
// optional ".env" dotfile as an override source for local development.
package config

import "time"

// Config is the root configuration structure for lingaserve. Every field has
// a sensible default so a zero-configuration process can still start.
type Config struct {
	// ListenAddr is the TCP address the HTTP API listens on.
	ListenAddr string

	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel string

	// MaxLoadedModels bounds how many [ModelRunner]s the model manager keeps
	// resident at once before evicting the least-recently-used one.
	MaxLoadedModels int

	// Device selects the inference device: "cpu", "gpu", or "auto".
	Device string

	// ComputeType selects the inference compute precision (e.g. "default",
	// "int8", "float16").
	ComputeType string

	// InterThreads is the number of parallel translations a single loaded
	// model may run concurrently at the inference-adapter level.
	InterThreads int

	// IntraThreads is the number of threads used within a single translation
	// call by the inference adapter.
	IntraThreads int

	// MaxBatchSize is the maximum number of jobs a [ModelRunner] batcher
	// coalesces into a single inference call.
	MaxBatchSize int

	// BatchTimeout bounds how long the batcher waits to opportunistically
	// coalesce further jobs once the first job in a batch arrives.
	BatchTimeout time.Duration

	// LangIDModelPath is the filesystem path to the language-identification
	// model. It is loaded from the environment but not read by the gateway:
	// the language-id pool's classifiers come from the classifier factory
	// the app is built with, and no model file is located or downloaded
	// from this path.
	LangIDModelPath string

	// LangIDWorkers is the number of goroutines in the language-id worker
	// pool.
	LangIDWorkers int

	// TranslationCacheSize is the maximum number of entries kept in each
	// model runner's per-model translation cache.
	TranslationCacheSize int

	// RegistryCatalogueURL is the remote model-catalogue endpoint consulted
	// by the model registry's refresh operation.
	RegistryCatalogueURL string

	// RegistryCatalogueFile is an optional local YAML catalogue consulted
	// when the remote catalogue is unavailable, or for offline operation.
	RegistryCatalogueFile string

	// RegistryCacheDir is the local directory artifacts are fetched into and
	// served from on subsequent requests.
	RegistryCacheDir string

	// RegistryPostgresDSN, when set, enables persistence of discovered model
	// metadata (never translated text) to PostgreSQL so a restarted gateway
	// can resolve previously-seen language pairs without a live catalogue
	// fetch.
	RegistryPostgresDSN string

	// MetricsEnabled toggles the Prometheus exporter bridge.
	MetricsEnabled bool

	// CORSAllowedOrigins is a comma-separated CORS allow-list. It is loaded
	// from the environment but not read by the HTTP server, which emits no
	// CORS headers.
	CORSAllowedOrigins string
}

// LogLevel-equivalent validity check lives in loader.go's Validate, since
// Config.LogLevel is a plain string sourced directly from the environment.
