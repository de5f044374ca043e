// Package orchestrator implements the Translation Orchestrator: it
// normalizes a request, resolves each item's source language (explicit or
// auto-detected via the LangID pool), groups items by resolved language,
// and fans out concurrently to the model manager — one submission per
// source item, so a model's batcher sees many items within its batch
// window and coalesces them.
//
// Grounded on quickmt/rest_server.py's translate_endpoint and
// quickmt_app.py's auto-detect/identity-shortcut logic, with the
// per-bucket fan-out expressed via golang.org/x/sync/errgroup in place of
// the source's asyncio.gather.
package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lingaserve/lingaserve/internal/langid"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/runner"
)

// identityModel is reported as ModelUsed when source and target languages
// already match and no translation is performed.
const identityModel = "identity"

// Request is one (possibly batched) translation request, already decoded
// from the HTTP layer's scalar-or-list JSON shapes into parallel slices.
type Request struct {
	// Src holds one or more source texts.
	Src []string
	// SrcLangs is nil when every item's language should be auto-detected.
	// Otherwise it holds either one entry (if the caller passed a single
	// src_lang string, expanded to every item — see SrcLangsScalar) or
	// exactly len(Src) entries.
	SrcLangs []string
	// SrcLangsScalar is true when the caller passed src_lang as a single
	// string rather than a list, so a length-1 SrcLangs is expanded to
	// every item instead of being rejected as a length mismatch.
	SrcLangsScalar bool
	TgtLang        string
	Params         langpair.Params
}

// Response holds one result per Request.Src item, index-aligned with it.
type Response struct {
	Translation  []string
	SrcLang      []string
	SrcLangScore []float64
	ModelUsed    []string
}

// ModelGetter resolves a language pair to a ready, loaded runner.
type ModelGetter interface {
	Get(ctx context.Context, src, tgt string) (*runner.Runner, error)
}

// LangIdentifier classifies text into (lang, score) candidates.
type LangIdentifier interface {
	Classify(ctx context.Context, texts []string, k int, threshold float64) ([][]langid.Result, error)
}

// Orchestrator is the gateway's single entry point for translation requests.
type Orchestrator struct {
	models ModelGetter
	langID LangIdentifier
}

// New constructs an Orchestrator.
func New(models ModelGetter, langID LangIdentifier) *Orchestrator {
	return &Orchestrator{models: models, langID: langID}
}

// Translate runs the full pipeline: language resolution, bucketing,
// identity short-circuit, and concurrent per-bucket dispatch. The returned
// Response's slices are always index-aligned with req.Src; an empty req.Src
// yields a zero-value Response with no error.
func (o *Orchestrator) Translate(ctx context.Context, req Request) (Response, error) {
	n := len(req.Src)
	if n == 0 {
		return Response{}, nil
	}

	srcLangs, srcScores, err := o.resolveSourceLangs(ctx, req)
	if err != nil {
		return Response{}, err
	}

	translations := make([]string, n)
	modelUsed := make([]string, n)

	buckets := make(map[string][]int)
	for i, lang := range srcLangs {
		buckets[lang] = append(buckets[lang], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for lang, indices := range buckets {
		lang, indices := lang, indices
		if lang == req.TgtLang {
			for _, i := range indices {
				translations[i] = req.Src[i]
				modelUsed[i] = identityModel
			}
			continue
		}
		g.Go(func() error {
			return o.translateBucket(gctx, req, lang, indices, translations, modelUsed)
		})
	}
	if err := g.Wait(); err != nil {
		return Response{}, err
	}

	return Response{
		Translation:  translations,
		SrcLang:      srcLangs,
		SrcLangScore: srcScores,
		ModelUsed:    modelUsed,
	}, nil
}

// resolveSourceLangs fills in each item's source language: explicit
// src_lang values pass through unscored, everything else is auto-detected
// via the LangID pool in one batched call.
func (o *Orchestrator) resolveSourceLangs(ctx context.Context, req Request) ([]string, []float64, error) {
	n := len(req.Src)

	switch {
	case req.SrcLangs == nil:
		results, err := o.langID.Classify(ctx, req.Src, 1, 0.0)
		if err != nil {
			return nil, nil, fmt.Errorf("orchestrator: identify source languages: %w", err)
		}
		langs := make([]string, n)
		scores := make([]float64, n)
		for i, r := range results {
			if len(r) == 0 {
				langs[i], scores[i] = langid.Unknown, 0.0
				continue
			}
			langs[i], scores[i] = r[0].Lang, r[0].Score
		}
		return langs, scores, nil

	case req.SrcLangsScalar:
		lang := req.SrcLangs[0]
		langs := make([]string, n)
		scores := make([]float64, n)
		for i := range langs {
			langs[i] = lang
			scores[i] = 1.0
		}
		return langs, scores, nil

	case len(req.SrcLangs) == n:
		scores := make([]float64, n)
		for i := range scores {
			scores[i] = 1.0
		}
		return append([]string(nil), req.SrcLangs...), scores, nil

	default:
		return nil, nil, ErrSrcLangLengthMismatch
	}
}

// translateBucket submits one runner.Translate call per item in indices,
// concurrently, so the target runner's batcher can coalesce them.
func (o *Orchestrator) translateBucket(ctx context.Context, req Request, lang string, indices []int, translations, modelUsed []string) error {
	r, err := o.models.Get(ctx, lang, req.TgtLang)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, i := range indices {
		i := i
		g.Go(func() error {
			out, err := r.Translate(gctx, req.Src[i], lang, req.TgtLang, req.Params)
			if err != nil {
				return err
			}
			translations[i] = out
			modelUsed[i] = r.Descriptor.ID
			return nil
		})
	}
	return g.Wait()
}
