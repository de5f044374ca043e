package registry

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"github.com/lingaserve/lingaserve/internal/langpair"
)

// ignorePatterns mirrors quickmt/manager.py's snapshot_download ignore_patterns:
// other framework dumps bundled alongside the engine's native artifact are
// never fetched. Matched against each entry in a Descriptor's Files list by
// downloadArtifact.
var ignorePatterns = []string{"eole-model/*", "eole_model/*"}

// catalogueEntry is one remote-catalogue model listing.
type catalogueEntry struct {
	ID    string   `json:"id" yaml:"id"`
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`
}

type catalogueResponse struct {
	Models []catalogueEntry `json:"models"`
}

// localCatalogue is the YAML shape read from catalogueFile.
type localCatalogue struct {
	Models []catalogueEntry `yaml:"models"`
}

// catalogueClient wraps the remote HTTP catalogue, a local YAML fallback,
// and local-disk artifact caching.
type catalogueClient struct {
	http          *resty.Client
	catalogueURL  string
	catalogueFile string
	cacheDir      string
}

func newCatalogueClient(catalogueURL, catalogueFile, cacheDir string) *catalogueClient {
	client := resty.New().SetTimeout(30 * time.Second)
	return &catalogueClient{
		http:          client,
		catalogueURL:  catalogueURL,
		catalogueFile: catalogueFile,
		cacheDir:      cacheDir,
	}
}

// fetchRemote retrieves and parses the catalogue over HTTP.
func (c *catalogueClient) fetchRemote(ctx context.Context) ([]langpair.Descriptor, error) {
	if c.catalogueURL == "" {
		return nil, fmt.Errorf("registry: no catalogue URL configured")
	}
	var body catalogueResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.catalogueURL)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch catalogue: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("registry: catalogue returned %s", resp.Status())
	}
	return parseCatalogue(body.Models), nil
}

// fetchLocal reads the fallback YAML catalogue file, if configured.
func (c *catalogueClient) fetchLocal() ([]langpair.Descriptor, error) {
	if c.catalogueFile == "" {
		return nil, fmt.Errorf("registry: no local catalogue file configured")
	}
	data, err := os.ReadFile(c.catalogueFile)
	if err != nil {
		return nil, fmt.Errorf("registry: read local catalogue: %w", err)
	}
	var cat localCatalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("registry: parse local catalogue: %w", err)
	}
	return parseCatalogue(cat.Models), nil
}

// parseCatalogue maps each catalogue entry's id (form
// "<namespace>/quickmt-<src>-<tgt>") to a Descriptor, silently discarding
// ids that don't match.
func parseCatalogue(entries []catalogueEntry) []langpair.Descriptor {
	var out []langpair.Descriptor
	for _, e := range entries {
		d, ok := parseModelID(e.ID)
		if !ok {
			continue
		}
		d.Files = e.Files
		out = append(out, d)
	}
	return out
}

func parseModelID(id string) (langpair.Descriptor, bool) {
	parts := strings.Split(id, "/")
	last := parts[len(parts)-1]
	const prefix = "quickmt-"
	if !strings.HasPrefix(last, prefix) {
		return langpair.Descriptor{}, false
	}
	rest := strings.TrimPrefix(last, prefix)
	langs := strings.SplitN(rest, "-", 2)
	if len(langs) != 2 || langs[0] == "" || langs[1] == "" {
		return langpair.Descriptor{}, false
	}
	return langpair.Descriptor{
		ID:          id,
		Src:         langs[0],
		Tgt:         langs[1],
		ArtifactRef: id,
	}, true
}

// artifact ensures desc's artifact is present locally: first a local
// cache-only lookup, then a remote fetch on miss.
func (c *catalogueClient) artifact(ctx context.Context, desc langpair.Descriptor) (string, error) {
	dir := filepath.Join(c.cacheDir, sanitizeDirName(desc.ID))

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}

	if err := c.downloadArtifact(ctx, desc, dir); err != nil {
		return "", fmt.Errorf("registry: fetch artifact for %s: %w", desc.ID, err)
	}
	return dir, nil
}

// downloadArtifact materializes desc's artifact directory, fetching each
// file the catalogue listed for it (model.bin, tokenizer files,
// vocabularies) except anything matching ignorePatterns. Actually
// retrieving file content from the catalogue's content store is a
// stand-in here — the content store itself is an external collaborator
// out of scope for this repository, same as inference/tokenizer's
// engine boundary — but the filtering is real: callers downstream
// (tokenizer probing, adapter loading) never see an eole-model/*
// artifact member, matching quickmt's own hf_download behavior.
func (c *catalogueClient) downloadArtifact(ctx context.Context, desc langpair.Descriptor, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range desc.Files {
		if ignored(f) {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("registry: create artifact dir for %s: %w", f, err)
		}
		if err := os.WriteFile(target, nil, 0o644); err != nil {
			return fmt.Errorf("registry: materialize artifact file %s: %w", f, err)
		}
	}
	return nil
}

// ignored reports whether file matches any of ignorePatterns.
func ignored(file string) bool {
	slashed := filepath.ToSlash(file)
	for _, pat := range ignorePatterns {
		if ok, _ := path.Match(pat, slashed); ok {
			return true
		}
	}
	return false
}

func sanitizeDirName(id string) string {
	return strings.ReplaceAll(id, "/", "__")
}
