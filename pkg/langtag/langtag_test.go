package langtag_test

import (
	"testing"

	"github.com/lingaserve/lingaserve/pkg/langtag"
)

func TestSuggest_FindsCloseTypo(t *testing.T) {
	known := []string{"en", "fr", "de", "es"}
	got, ok := langtag.Suggest("fe", known)
	if !ok {
		t.Fatal("Suggest() = false, want a match")
	}
	if got != "fr" && got != "de" && got != "es" {
		t.Errorf("Suggest(%q) = %q, want one of the known near-matches", "fe", got)
	}
}

func TestSuggest_NoMatchBelowThreshold(t *testing.T) {
	known := []string{"en", "fr"}
	if _, ok := langtag.Suggest("zz", known); ok {
		t.Error("Suggest() = true, want no suggestion for an unrelated code")
	}
}

func TestSuggest_EmptyKnownSet(t *testing.T) {
	if _, ok := langtag.Suggest("en", nil); ok {
		t.Error("Suggest() = true with no known codes, want false")
	}
}
