package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/lingaserve/lingaserve/internal/httpapi/apierr"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/manager"
	"github.com/lingaserve/lingaserve/internal/orchestrator"
	"github.com/lingaserve/lingaserve/pkg/langtag"
)

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body translateRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apierr.ErrValidation, err))
		return
	}
	if !body.Src.set {
		writeError(w, fmt.Errorf("%w: src is required", apierr.ErrValidation))
		return
	}

	tgtLang := body.TgtLang
	if tgtLang == "" {
		tgtLang = "en"
	}
	params := langpair.Params{
		BeamSize:          intOrDefault(body.BeamSize, 5),
		Patience:          intOrDefault(body.Patience, 1),
		LengthPenalty:     floatOrDefault(body.LengthPenalty, 1.0),
		CoveragePenalty:   floatOrDefault(body.CoveragePenalty, 0.0),
		RepetitionPenalty: floatOrDefault(body.RepetitionPenalty, 1.0),
		MaxDecodingLength: intOrDefault(body.MaxDecodingLength, 256),
	}
	if params.Patience > params.BeamSize {
		writeError(w, fmt.Errorf("%w: patience must not exceed beam_size", apierr.ErrValidation))
		return
	}

	req := orchestrator.Request{Src: body.Src.values, TgtLang: tgtLang, Params: params}
	if body.SrcLang != nil {
		req.SrcLangs = body.SrcLang.values
		req.SrcLangsScalar = body.SrcLang.isScalar
	}

	if s.orch == nil {
		writeError(w, apierr.ErrManagerUnavailable)
		return
	}
	resp, err := s.orch.Translate(r.Context(), req)
	if err != nil {
		if errors.Is(err, manager.ErrModelNotFound) {
			if suggestion, ok := langtag.Suggest(tgtLang, s.knownLangCodes()); ok {
				err = fmt.Errorf("%w (did you mean tgt_lang %q?)", err, suggestion)
			}
		}
		writeError(w, err)
		return
	}

	scalar := body.Src.isScalar
	writeJSON(w, http.StatusOK, translateResponseBody{
		Translation:    scalarOrSlice(resp.Translation, scalar),
		SrcLang:        scalarOrSlice(resp.SrcLang, scalar),
		SrcLangScore:   scalarOrSlice(resp.SrcLangScore, scalar),
		TgtLang:        tgtLang,
		ProcessingTime: time.Since(start).Seconds(),
		ModelUsed:      scalarOrSlice(resp.ModelUsed, scalar),
	})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body identifyRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apierr.ErrValidation, err))
		return
	}
	if !body.Src.set {
		writeError(w, fmt.Errorf("%w: src is required", apierr.ErrValidation))
		return
	}

	if s.langID == nil {
		writeError(w, apierr.ErrLangIDUnavailable)
		return
	}
	k := intOrDefault(body.K, 1)
	threshold := floatOrDefault(body.Threshold, 0.0)

	results, err := s.langID.Classify(r.Context(), body.Src.values, k, threshold)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", apierr.ErrLangIDUnavailable, err))
		return
	}

	out := make([][]langResult, len(results))
	for i, rs := range results {
		lr := make([]langResult, len(rs))
		for j, res := range rs {
			lr[j] = langResult{Lang: res.Lang, Score: res.Score}
		}
		out[i] = lr
	}

	writeJSON(w, http.StatusOK, identifyResponseBody{
		Results:        scalarOrSlice(out, body.Src.isScalar),
		ProcessingTime: time.Since(start).Seconds(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if s.models == nil || s.catalogue == nil {
		writeError(w, apierr.ErrManagerUnavailable)
		return
	}
	infos := s.models.ListModels(s.catalogue.Descriptors())
	models := make([]modelInfoBody, len(infos))
	for i, m := range infos {
		models[i] = modelInfoBody{
			ModelID: m.Descriptor.ID,
			SrcLang: m.Descriptor.Src,
			TgtLang: m.Descriptor.Tgt,
			Loaded:  m.Loaded,
		}
	}
	writeJSON(w, http.StatusOK, modelsResponseBody{Models: models})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if s.models == nil {
		writeError(w, apierr.ErrManagerUnavailable)
		return
	}
	pairs := s.models.LanguagePairs()
	for _, tgts := range pairs {
		sort.Strings(tgts)
	}
	writeJSON(w, http.StatusOK, languagesResponseBody(pairs))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var loaded []string
	if s.models != nil && s.catalogue != nil {
		for _, m := range s.models.ListModels(s.catalogue.Descriptors()) {
			if m.Loaded {
				loaded = append(loaded, m.Descriptor.Pair().String())
			}
		}
	}
	writeJSON(w, http.StatusOK, healthResponseBody{
		Status:       "ok",
		LoadedModels: loaded,
		MaxModels:    s.maxLoadedModels,
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"detail":"internal error encoding response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorBody{Detail: err.Error()})
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
