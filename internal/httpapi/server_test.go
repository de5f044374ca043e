package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	infmock "github.com/lingaserve/lingaserve/internal/inference/mock"
	"github.com/lingaserve/lingaserve/internal/httpapi"
	"github.com/lingaserve/lingaserve/internal/langid"
	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/manager"
	"github.com/lingaserve/lingaserve/internal/orchestrator"
	"github.com/lingaserve/lingaserve/internal/runner"
	tokmock "github.com/lingaserve/lingaserve/internal/tokenizer/mock"
)

// fakeLangID resolves each text via an exact-match table, defaulting to
// langid.Unknown.
type fakeLangID struct {
	table map[string]string
}

func (f fakeLangID) Classify(ctx context.Context, texts []string, k int, threshold float64) ([][]langid.Result, error) {
	out := make([][]langid.Result, len(texts))
	for i, t := range texts {
		lang, ok := f.table[t]
		if !ok {
			lang = langid.Unknown
		}
		out[i] = []langid.Result{{Lang: lang, Score: 0.9}}
	}
	return out, nil
}

// fakeModels hands out one started runner per registered pair.
type fakeModels struct {
	runners map[langpair.Pair]*runner.Runner
}

func newFakeModels(t *testing.T, pairs ...langpair.Pair) *fakeModels {
	t.Helper()
	fm := &fakeModels{runners: make(map[langpair.Pair]*runner.Runner)}
	for _, p := range pairs {
		desc := langpair.Descriptor{ID: "org/quickmt-" + p.String(), Src: p.Src, Tgt: p.Tgt}
		r := runner.New(desc, runner.Config{MaxBatchSize: 8, BatchTimeout: 5 * time.Millisecond, QueueSize: 16, CacheSize: 64})
		if err := r.Start(context.Background(), infmock.Loader(infmock.New()), tokmock.Loader()); err != nil {
			t.Fatalf("Start(%s): %v", p, err)
		}
		t.Cleanup(func() { _ = r.Stop(context.Background()) })
		fm.runners[p] = r
	}
	return fm
}

func (f *fakeModels) Get(ctx context.Context, src, tgt string) (*runner.Runner, error) {
	p := langpair.Pair{Src: src, Tgt: tgt}
	r, ok := f.runners[p]
	if !ok {
		return nil, manager.ErrModelNotFound
	}
	return r, nil
}

func (f *fakeModels) ListModels(descriptors []langpair.Descriptor) []manager.ModelInfo {
	out := make([]manager.ModelInfo, len(descriptors))
	for i, d := range descriptors {
		_, loaded := f.runners[d.Pair()]
		out[i] = manager.ModelInfo{Descriptor: d, Loaded: loaded}
	}
	return out
}

func (f *fakeModels) LanguagePairs() map[string][]string {
	out := make(map[string][]string)
	for p := range f.runners {
		out[p.Src] = append(out[p.Src], p.Tgt)
	}
	return out
}

// fakeCatalogue reports a fixed descriptor set for /models and /health.
type fakeCatalogue struct {
	descriptors []langpair.Descriptor
}

func (c fakeCatalogue) Descriptors() []langpair.Descriptor { return c.descriptors }

func newServer(t *testing.T, models *fakeModels, langID fakeLangID, descriptors []langpair.Descriptor, maxLoaded int) (*http.ServeMux, *httptest.Server) {
	t.Helper()
	orch := orchestrator.New(models, langID)
	srv := httpapi.New(orch, langID, models, fakeCatalogue{descriptors: descriptors}, maxLoaded)
	mux := http.NewServeMux()
	srv.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return mux, ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestTranslate_S1_ScalarExplicitSrcLang(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"})
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": "Bonjour", "src_lang": "fr", "tgt_lang": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["src_lang"] != "fr" {
		t.Errorf("src_lang = %v, want fr", body["src_lang"])
	}
	if body["src_lang_score"] != 1.0 {
		t.Errorf("src_lang_score = %v, want 1.0", body["src_lang_score"])
	}
	if body["tgt_lang"] != "en" {
		t.Errorf("tgt_lang = %v, want en", body["tgt_lang"])
	}
	used, _ := body["model_used"].(string)
	if !strings.HasSuffix(used, "quickmt-fr-en") {
		t.Errorf("model_used = %q, want suffix quickmt-fr-en", used)
	}
}

func TestTranslate_S2_IdentityShortCircuit(t *testing.T) {
	models := newFakeModels(t)
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": "This is already English", "src_lang": "en", "tgt_lang": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	if body["translation"] != "This is already English" {
		t.Errorf("translation = %v, want passthrough", body["translation"])
	}
	if body["model_used"] != "identity" {
		t.Errorf("model_used = %v, want identity", body["model_used"])
	}
}

func TestTranslate_S3_ListFanOut(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"}, langpair.Pair{Src: "es", Tgt: "en"})
	langID := fakeLangID{table: map[string]string{"Bonjour": "fr", "Hola": "es"}}
	_, ts := newServer(t, models, langID, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": []string{"Bonjour", "Hola"}, "tgt_lang": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Translation []string `json:"translation"`
		SrcLang     []string `json:"src_lang"`
		ModelUsed   []string `json:"model_used"`
	}
	decodeBody(t, resp, &body)
	if len(body.Translation) != 2 {
		t.Fatalf("len(translation) = %d, want 2", len(body.Translation))
	}
	if body.SrcLang[0] != "fr" || body.SrcLang[1] != "es" {
		t.Errorf("src_lang = %v, want [fr es]", body.SrcLang)
	}
	joined := strings.Join(body.ModelUsed, ",")
	if !strings.Contains(joined, "quickmt-fr-en") || !strings.Contains(joined, "quickmt-es-en") {
		t.Errorf("model_used = %v, want both fr-en and es-en", body.ModelUsed)
	}
}

func TestTranslate_S4_ModelNotFound(t *testing.T) {
	models := newFakeModels(t)
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": "Hello", "src_lang": "en", "tgt_lang": "zz",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	detail, _ := body["detail"].(string)
	if !strings.Contains(strings.ToLower(detail), "not found") {
		t.Errorf("detail = %q, want it to contain 'not found'", detail)
	}
}

func TestTranslate_ModelNotFoundSuggestsCloseLangCode(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"})
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": "Bonjour", "src_lang": "fr", "tgt_lang": "eb",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	detail, _ := body["detail"].(string)
	if !strings.Contains(detail, `did you mean tgt_lang "en"?`) {
		t.Errorf("detail = %q, want a suggestion for en", detail)
	}
}

func TestTranslate_S5_SrcLangLengthMismatch(t *testing.T) {
	models := newFakeModels(t)
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": []string{"a", "b"}, "src_lang": []string{"en"}, "tgt_lang": "fr",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	detail, _ := body["detail"].(string)
	if !strings.Contains(detail, "src_lang list length must match src list length") {
		t.Errorf("detail = %q, want length-mismatch message", detail)
	}
}

func TestTranslate_PatienceExceedsBeamSizeIsRejected(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"})
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp := postJSON(t, ts, "/api/translate", map[string]any{
		"src": "Bonjour", "src_lang": "fr", "tgt_lang": "en",
		"beam_size": 2, "patience": 5,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHealth_S6_ReportsOnlyEvictionSurvivor(t *testing.T) {
	// S6 exercises the manager's LRU directly (it governs loaded_models);
	// here we simulate its post-sequence state via fakeModels' fixed
	// registration set, since this suite targets the HTTP layer.
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"})
	descriptors := []langpair.Descriptor{
		{ID: "org/quickmt-en-fr", Src: "en", Tgt: "fr"},
		{ID: "org/quickmt-fr-en", Src: "fr", Tgt: "en"},
	}
	_, ts := newServer(t, models, fakeLangID{}, descriptors, 1)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status       string   `json:"status"`
		LoadedModels []string `json:"loaded_models"`
		MaxModels    int      `json:"max_models"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if len(body.LoadedModels) != 1 || body.LoadedModels[0] != "fr-en" {
		t.Errorf("loaded_models = %v, want [fr-en]", body.LoadedModels)
	}
	if body.MaxModels != 1 {
		t.Errorf("max_models = %d, want 1", body.MaxModels)
	}
}

func TestIdentify_ScalarSrcYieldsScalarResults(t *testing.T) {
	models := newFakeModels(t)
	langID := fakeLangID{table: map[string]string{"Bonjour": "fr"}}
	_, ts := newServer(t, models, langID, nil, 5)

	resp := postJSON(t, ts, "/api/identify-language", map[string]any{"src": "Bonjour"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Results []struct {
			Lang  string  `json:"lang"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	decodeBody(t, resp, &body)
	if len(body.Results) != 1 || body.Results[0].Lang != "fr" {
		t.Errorf("results = %+v, want one entry with lang fr", body.Results)
	}
}

func TestLanguages_ReportsSortedTargets(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "en", Tgt: "fr"}, langpair.Pair{Src: "en", Tgt: "de"})
	_, ts := newServer(t, models, fakeLangID{}, nil, 5)

	resp, err := http.Get(ts.URL + "/api/languages")
	if err != nil {
		t.Fatalf("GET /api/languages: %v", err)
	}
	defer resp.Body.Close()
	var body map[string][]string
	decodeBody(t, resp, &body)
	if got := body["en"]; len(got) != 2 || got[0] != "de" || got[1] != "fr" {
		t.Errorf("languages[en] = %v, want sorted [de fr]", got)
	}
}

func TestModels_ListsCatalogueWithLoadedFlag(t *testing.T) {
	models := newFakeModels(t, langpair.Pair{Src: "fr", Tgt: "en"})
	descriptors := []langpair.Descriptor{
		{ID: "org/quickmt-fr-en", Src: "fr", Tgt: "en"},
		{ID: "org/quickmt-de-en", Src: "de", Tgt: "en"},
	}
	_, ts := newServer(t, models, fakeLangID{}, descriptors, 5)

	resp, err := http.Get(ts.URL + "/api/models")
	if err != nil {
		t.Fatalf("GET /api/models: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Models []struct {
			ModelID string `json:"model_id"`
			Loaded  bool   `json:"loaded"`
		} `json:"models"`
	}
	decodeBody(t, resp, &body)
	if len(body.Models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(body.Models))
	}
	for _, m := range body.Models {
		want := m.ModelID == "org/quickmt-fr-en"
		if m.Loaded != want {
			t.Errorf("model %s loaded = %v, want %v", m.ModelID, m.Loaded, want)
		}
	}
}
