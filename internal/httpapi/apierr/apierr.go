// Package apierr defines the HTTP-layer error taxonomy: a small set of
// sentinel errors that every other package wraps its failures in, mapped
// to status codes only at the HTTP boundary.
package apierr

import "errors"

var (
	// ErrValidation covers bad body shapes, out-of-range parameters, or a
	// src/src_lang length mismatch. Surfaced as 422.
	ErrValidation = errors.New("validation error")

	// ErrModelNotFound means the registry has no entry for the requested
	// language pair. Surfaced as 404.
	ErrModelNotFound = errors.New("model not found")

	// ErrLoadFailed means an artifact fetch or adapter load failed.
	// Surfaced as 500; the caller may retry.
	ErrLoadFailed = errors.New("model load failed")

	// ErrTranslation means the inference adapter failed during a batch.
	// Surfaced as 500; the runner that raised it remains usable.
	ErrTranslation = errors.New("translation failed")

	// ErrLangIDUnavailable means the language-identification pool has not
	// been initialized. Surfaced as 503.
	ErrLangIDUnavailable = errors.New("language identification unavailable")

	// ErrManagerUnavailable means the model manager has not been
	// constructed. Surfaced as 503.
	ErrManagerUnavailable = errors.New("model manager unavailable")
)

// StatusFor maps one of the sentinels above (or a wrapping error) to an HTTP
// status code, defaulting to 500 for anything unrecognized.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 422
	case errors.Is(err, ErrModelNotFound):
		return 404
	case errors.Is(err, ErrLangIDUnavailable), errors.Is(err, ErrManagerUnavailable):
		return 503
	case errors.Is(err, ErrLoadFailed), errors.Is(err, ErrTranslation):
		return 500
	default:
		return 500
	}
}
