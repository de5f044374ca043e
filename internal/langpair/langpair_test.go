package langpair_test

import (
	"testing"

	"github.com/lingaserve/lingaserve/internal/langpair"
)

func TestPairString(t *testing.T) {
	p := langpair.Pair{Src: "en", Tgt: "fr"}
	if got, want := p.String(), "en-fr"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDescriptorPair(t *testing.T) {
	d := langpair.Descriptor{ID: "org/quickmt-en-fr", Src: "en", Tgt: "fr"}
	if got, want := d.Pair(), (langpair.Pair{Src: "en", Tgt: "fr"}); got != want {
		t.Errorf("Pair() = %v, want %v", got, want)
	}
}

func TestParamsCanonical_OrderIndependent(t *testing.T) {
	a := langpair.Params{BeamSize: 5, Patience: 2, LengthPenalty: 1.2, CoveragePenalty: 0, RepetitionPenalty: 1.1, MaxDecodingLength: 256}
	b := langpair.Params{MaxDecodingLength: 256, RepetitionPenalty: 1.1, CoveragePenalty: 0, LengthPenalty: 1.2, Patience: 2, BeamSize: 5}
	if a.Canonical() != b.Canonical() {
		t.Errorf("Canonical() differs across field construction order:\n%s\n%s", a.Canonical(), b.Canonical())
	}
}

func TestParamsCanonical_DistinctForDifferentParams(t *testing.T) {
	a := langpair.Params{BeamSize: 5}
	b := langpair.Params{BeamSize: 6}
	if a.Canonical() == b.Canonical() {
		t.Errorf("Canonical() collided for distinct params: %q", a.Canonical())
	}
}

func TestNewFingerprint_Deterministic(t *testing.T) {
	params := langpair.Params{BeamSize: 5, Patience: 2}
	f1 := langpair.NewFingerprint("hello", "en", "fr", params)
	f2 := langpair.NewFingerprint("hello", "en", "fr", params)
	if f1.Key() != f2.Key() {
		t.Errorf("Key() not deterministic: %q vs %q", f1.Key(), f2.Key())
	}
}

func TestFingerprintKey_DistinguishesFields(t *testing.T) {
	base := langpair.NewFingerprint("hello", "en", "fr", langpair.Params{})
	cases := map[string]langpair.Fingerprint{
		"src text":  langpair.NewFingerprint("goodbye", "en", "fr", langpair.Params{}),
		"src lang":  langpair.NewFingerprint("hello", "de", "fr", langpair.Params{}),
		"tgt lang":  langpair.NewFingerprint("hello", "en", "es", langpair.Params{}),
		"params":    langpair.NewFingerprint("hello", "en", "fr", langpair.Params{BeamSize: 3}),
	}
	for name, other := range cases {
		if base.Key() == other.Key() {
			t.Errorf("%s: Key() collided with base fingerprint", name)
		}
	}
}

func TestFingerprintKey_NoDelimiterCollision(t *testing.T) {
	// A naive "+"-joined key would collide here; the NUL-separated key must not.
	f1 := langpair.NewFingerprint("ab", "c", "d", langpair.Params{})
	f2 := langpair.NewFingerprint("a", "bc", "d", langpair.Params{})
	if f1.Key() == f2.Key() {
		t.Errorf("Key() collided across a field boundary shift: %q", f1.Key())
	}
}
