package langid_test

import (
	"context"
	"testing"

	"github.com/lingaserve/lingaserve/internal/langid"
	"github.com/lingaserve/lingaserve/internal/langid/mock"
)

func TestClassify_ReturnsConfiguredResults(t *testing.T) {
	c := mock.New(map[string]langid.Result{
		"bonjour": {Lang: "fr", Score: 0.98},
		"hola":    {Lang: "es", Score: 0.95},
	})
	pool, err := langid.New(context.Background(), 2, c.Factory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	results, err := pool.Classify(context.Background(), []string{"bonjour", "hola"}, 1, 0.0)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0][0].Lang != "fr" || results[1][0].Lang != "es" {
		t.Errorf("results = %+v, want fr then es", results)
	}
}

func TestClassify_BelowThresholdYieldsUnknown(t *testing.T) {
	c := mock.New(map[string]langid.Result{
		"???": {Lang: "xx", Score: 0.1},
	})
	pool, err := langid.New(context.Background(), 1, c.Factory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	results, err := pool.Classify(context.Background(), []string{"???"}, 1, 0.5)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if results[0][0].Lang != langid.Unknown || results[0][0].Score != 0.0 {
		t.Errorf("results[0] = %+v, want unknown/0.0", results[0])
	}
}

func TestClassify_SanitizesNewlines(t *testing.T) {
	c := mock.New(map[string]langid.Result{
		"line one line two": {Lang: "en", Score: 0.9},
	})
	pool, err := langid.New(context.Background(), 1, c.Factory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	results, err := pool.Classify(context.Background(), []string{"line one\nline two"}, 1, 0.0)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if results[0][0].Lang != "en" {
		t.Errorf("results[0] = %+v, want lang=en (newline not sanitized before lookup)", results[0])
	}
}

func TestBest_ReturnsTopLabel(t *testing.T) {
	c := mock.New(map[string]langid.Result{"bonjour": {Lang: "fr", Score: 0.98}})
	pool, err := langid.New(context.Background(), 1, c.Factory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	best, err := pool.Best(context.Background(), []string{"bonjour"}, 0.0)
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if best[0] != "fr" {
		t.Errorf("Best = %v, want [fr]", best)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	c := mock.New(nil)
	pool, err := langid.New(context.Background(), 2, c.Factory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pool.Close()
	pool.Close()
}
