package tokenizer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// jointFile and the split file pair mirror the artifact contract in
// quickmt's hub.py (src.spm.model / tgt.spm.model, or a single joint model).
const (
	jointFile = "joint.spm.model"
	srcFile   = "src.spm.model"
	tgtFile   = "tgt.spm.model"
)

// ProbeMode inspects an artifact directory's contents and reports which
// tokenizer [Mode] it uses.
func ProbeMode(artifactDir string) Mode {
	if _, err := os.Stat(filepath.Join(artifactDir, jointFile)); err == nil {
		return ModeJoint
	}
	return ModeSplit
}

// whitespacePair is a dependency-free [Pair] implementation: it splits on
// whitespace on encode and joins with a single space on decode, stripping
// the trailing [EOSToken]. Real subword tokenization is an external
// collaborator out of scope for this repository; this stand-in keeps the
// pipeline exercisable end to end without one.
type whitespacePair struct{}

// NewJoint constructs a [Pair] for an artifact using a single shared
// tokenizer file.
func NewJoint(ctx context.Context, artifactDir string) (Pair, error) {
	return whitespacePair{}, nil
}

// NewSplit constructs a [Pair] for an artifact using separate src/tgt
// tokenizer files.
func NewSplit(ctx context.Context, artifactDir string) (Pair, error) {
	return whitespacePair{}, nil
}

// NewFromArtifact probes artifactDir and dispatches to [NewJoint] or
// [NewSplit] accordingly — the general-purpose [Loader] used in production
// wiring.
func NewFromArtifact(ctx context.Context, artifactDir string) (Pair, error) {
	if ProbeMode(artifactDir) == ModeJoint {
		return NewJoint(ctx, artifactDir)
	}
	return NewSplit(ctx, artifactDir)
}

func (whitespacePair) EncodeSrc(ctx context.Context, text string) ([]string, error) {
	tokens := strings.Fields(text)
	return append(tokens, EOSToken), nil
}

func (whitespacePair) DecodeTgt(ctx context.Context, tokens []string) (string, error) {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == EOSToken {
			continue
		}
		filtered = append(filtered, t)
	}
	return strings.Join(filtered, " "), nil
}
