package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/lingaserve/lingaserve/internal/langpair"
	"github.com/lingaserve/lingaserve/internal/registry"
)

func writeLocalCatalogue(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "catalogue.yaml")
	const body = `
models:
  - id: quickmt/quickmt-de-it
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write local catalogue: %v", err)
	}
	return path
}

func TestRefresh_PrefersRemoteCatalogue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"id":"quickmt/quickmt-en-fr"}]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	localFile := writeLocalCatalogue(t, dir)

	r := registry.New(srv.URL, localFile, t.TempDir())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, ok := r.Resolve("en", "fr"); !ok {
		t.Error("Resolve(en, fr) not found, want the remote-catalogue entry")
	}
	if _, ok := r.Resolve("de", "it"); ok {
		t.Error("Resolve(de, it) found, want only the remote entry to be present")
	}
}

func TestRefresh_FallsBackToLocalCatalogueWhenRemoteUnavailable(t *testing.T) {
	dir := t.TempDir()
	localFile := writeLocalCatalogue(t, dir)

	// No catalogueURL: fetchRemote always errors immediately, so the
	// FallbackGroup must try the local catalogue next.
	r := registry.New("", localFile, t.TempDir())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, ok := r.Resolve("de", "it"); !ok {
		t.Error("Resolve(de, it) not found, want the local-catalogue fallback entry")
	}
}

func TestRefresh_NoSourcesAvailableIsNonFatal(t *testing.T) {
	r := registry.New("", "", t.TempDir())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned an error, want nil (refresh failures are logged, not fatal): %v", err)
	}
	if pairs := r.LanguagePairs(); len(pairs) != 0 {
		t.Errorf("LanguagePairs() = %v, want empty", pairs)
	}
}

func TestLanguagePairs_AggregatesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[
			{"id":"quickmt/quickmt-en-fr"},
			{"id":"quickmt/quickmt-en-de"},
			{"id":"quickmt/quickmt-fr-en"}
		]}`))
	}))
	defer srv.Close()

	r := registry.New(srv.URL, "", t.TempDir())
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	pairs := r.LanguagePairs()
	if got, want := pairs["en"], []string{"de", "fr"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("LanguagePairs()[en] = %v, want %v", got, want)
	}
}

func TestSeed_WarmStartsBeforeRefresh(t *testing.T) {
	r := registry.New("", "", t.TempDir())
	r.Seed([]langpair.Descriptor{{ID: "quickmt/quickmt-en-fr", Src: "en", Tgt: "fr"}})

	if _, ok := r.Resolve("en", "fr"); !ok {
		t.Error("Resolve(en, fr) not found after Seed, want the warm-started entry")
	}
}

func TestArtifact_SkipsIgnoredFiles(t *testing.T) {
	cacheDir := t.TempDir()
	r := registry.New("", "", cacheDir)

	desc := langpair.Descriptor{
		ID:  "quickmt/quickmt-en-fr",
		Src: "en",
		Tgt: "fr",
		Files: []string{
			"model.bin",
			"tokenizer.json",
			"eole-model/checkpoint.pt",
		},
	}

	dir, err := r.Artifact(context.Background(), desc)
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}

	for _, want := range []string{"model.bin", "tokenizer.json"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("expected artifact member %q, stat error: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "eole-model", "checkpoint.pt")); err == nil {
		t.Error("eole-model/checkpoint.pt was materialized, want it ignored")
	}

	// Second call hits the cache-only path and must not error or re-fetch.
	if _, err := r.Artifact(context.Background(), desc); err != nil {
		t.Fatalf("Artifact (cached): %v", err)
	}
}
