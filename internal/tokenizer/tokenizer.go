// Package tokenizer defines the contract for encoding source text to subword
// tokens and decoding hypothesis tokens back to text. The actual subword
// model (sentencepiece or similar) is an external collaborator out of scope
// for this repository; this package only fixes the boundary and the
// joint-vs-split mode selection.
package tokenizer

import "context"

// EOSToken is the engine's end-of-sentence marker, appended by EncodeSrc after
// every encoded sequence.
const EOSToken = "</s>"

// Pair encodes source text to token sequences and decodes hypothesis token
// sequences back to text. A Pair is derived from an artifact directory: two
// separate tokenizer files (split mode) or one shared file (joint mode).
type Pair interface {
	// EncodeSrc tokenizes a source sentence, appending [EOSToken].
	EncodeSrc(ctx context.Context, text string) ([]string, error)

	// DecodeTgt detokenizes a hypothesis token sequence to plain text.
	DecodeTgt(ctx context.Context, tokens []string) (string, error)
}

// Mode identifies which tokenizer layout an artifact directory uses.
type Mode int

const (
	// ModeJoint uses a single subword model shared by both source and
	// target sides.
	ModeJoint Mode = iota
	// ModeSplit uses separate src/tgt subword models.
	ModeSplit
)

// Loader constructs a [Pair] from an artifact directory, probing its
// contents to select [ModeJoint] or [ModeSplit].
type Loader func(ctx context.Context, artifactDir string) (Pair, error)
