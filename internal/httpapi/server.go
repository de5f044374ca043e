// Package httpapi implements the gateway's HTTP surface: a thin layer that
// decodes request bodies, validates them, delegates to the
// orchestrator/langid/manager components, and maps errors to status codes
// at this boundary only.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/lingaserve/lingaserve/internal/httpapi/apierr"
	"github.com/lingaserve/lingaserve/internal/langid"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/manager"
	"github.com/lingaserve/lingaserve/internal/orchestrator"
)

// translator is the subset of [orchestrator.Orchestrator] the server needs.
type translator interface {
	Translate(ctx context.Context, req orchestrator.Request) (orchestrator.Response, error)
}

// identifier is the subset of [langid.Pool] the server needs.
type identifier interface {
	Classify(ctx context.Context, texts []string, k int, threshold float64) ([][]langid.Result, error)
}

// modelLister is the subset of [manager.Manager] the server needs for the
// /models, /languages, and /health endpoints.
type modelLister interface {
	ListModels(descriptors []langpair.Descriptor) []manager.ModelInfo
	LanguagePairs() map[string][]string
}

// catalogue is the subset of [registry.Registry] the server needs.
type catalogue interface {
	Descriptors() []langpair.Descriptor
}

// Server serves lingaserve's HTTP API under the "/api" prefix.
type Server struct {
	orch            translator
	langID          identifier
	models          modelLister
	catalogue       catalogue
	maxLoadedModels int
}

// New constructs a Server. langID and models may be nil if those
// subsystems haven't finished initializing yet; the affected endpoints then
// report 503 instead of panicking.
func New(orch translator, langID identifier, models modelLister, cat catalogue, maxLoadedModels int) *Server {
	return &Server{
		orch:            orch,
		langID:          langID,
		models:          models,
		catalogue:       cat,
		maxLoadedModels: maxLoadedModels,
	}
}

// Register adds every /api/* route to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("POST /api/identify-language", s.handleIdentify)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// knownLangCodes flattens the manager's known source/target pairs into a
// deduplicated list, for offering "did you mean" suggestions on a 404.
func (s *Server) knownLangCodes() []string {
	if s.models == nil {
		return nil
	}
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for src, tgts := range s.models.LanguagePairs() {
		add(src)
		for _, tgt := range tgts {
			add(tgt)
		}
	}
	return codes
}

// statusForError maps an error to an HTTP status code. Domain
// sentinels raised below the HTTP boundary (orchestrator, manager) are
// recognized directly; everything else falls back to [apierr.StatusFor].
func statusForError(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrSrcLangLengthMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, manager.ErrModelNotFound):
		return http.StatusNotFound
	default:
		return apierr.StatusFor(err)
	}
}
