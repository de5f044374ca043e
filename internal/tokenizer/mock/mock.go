// Package mock provides a reversible whitespace [tokenizer.Pair] test
// double.
package mock

import (
	"context"
	"strings"

	"github.com/lingaserve/lingaserve/internal/tokenizer"
)

// Pair is a trivial, fully reversible tokenizer for tests.
type Pair struct{}

// EncodeSrc implements [tokenizer.Pair].
func (Pair) EncodeSrc(ctx context.Context, text string) ([]string, error) {
	return append(strings.Fields(text), tokenizer.EOSToken), nil
}

// DecodeTgt implements [tokenizer.Pair].
func (Pair) DecodeTgt(ctx context.Context, tokens []string) (string, error) {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == tokenizer.EOSToken {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " "), nil
}

// Loader returns a [tokenizer.Loader] that always returns Pair{}.
func Loader() tokenizer.Loader {
	return func(ctx context.Context, artifactDir string) (tokenizer.Pair, error) {
		return Pair{}, nil
	}
}
