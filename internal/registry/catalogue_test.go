package registry

import (
	"testing"

	"github.com/lingaserve/lingaserve/internal/langpair"
)

func TestParseModelID(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want langpair.Descriptor
		ok   bool
	}{
		{
			name: "well formed",
			id:   "quickmt/quickmt-en-fr",
			want: langpair.Descriptor{ID: "quickmt/quickmt-en-fr", Src: "en", Tgt: "fr", ArtifactRef: "quickmt/quickmt-en-fr"},
			ok:   true,
		},
		{
			name: "no namespace",
			id:   "quickmt-de-es",
			want: langpair.Descriptor{ID: "quickmt-de-es", Src: "de", Tgt: "es", ArtifactRef: "quickmt-de-es"},
			ok:   true,
		},
		{
			name: "missing quickmt prefix",
			id:   "quickmt/other-en-fr",
			ok:   false,
		},
		{
			name: "missing target language",
			id:   "quickmt/quickmt-en",
			ok:   false,
		},
		{
			name: "empty src",
			id:   "quickmt/quickmt--fr",
			ok:   false,
		},
		{
			name: "empty id",
			id:   "",
			ok:   false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseModelID(tc.id)
			if ok != tc.ok {
				t.Fatalf("parseModelID(%q) ok = %v, want %v", tc.id, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("parseModelID(%q) = %+v, want %+v", tc.id, got, tc.want)
			}
		})
	}
}

func TestParseCatalogue_SkipsMalformedIDs(t *testing.T) {
	entries := []catalogueEntry{
		{ID: "quickmt/quickmt-en-fr", Files: []string{"model.bin"}},
		{ID: "quickmt/not-a-model"},
		{ID: "quickmt/quickmt-de-it"},
	}
	descs := parseCatalogue(entries)
	if len(descs) != 2 {
		t.Fatalf("parseCatalogue returned %d descriptors, want 2: %+v", len(descs), descs)
	}
	if descs[0].Files == nil || descs[0].Files[0] != "model.bin" {
		t.Errorf("parseCatalogue did not thread Files through: %+v", descs[0])
	}
}

func TestIgnored(t *testing.T) {
	cases := []struct {
		file string
		want bool
	}{
		{"model.bin", false},
		{"tokenizer.json", false},
		{"eole-model/checkpoint.pt", true},
		{"eole_model/checkpoint.pt", true},
		{"sub/eole-model/checkpoint.pt", false}, // pattern only matches the top-level segment
	}
	for _, tc := range cases {
		if got := ignored(tc.file); got != tc.want {
			t.Errorf("ignored(%q) = %v, want %v", tc.file, got, tc.want)
		}
	}
}
