// Package mock provides a fake [langid.Classifier] keyed on exact input
// text, for tests that need deterministic language detection without a
// real fastText-style model.
package mock

import "github.com/lingaserve/lingaserve/internal/langid"

// Classifier returns a fixed (lang, score) pair for any text found in Table
// (matched by exact equality), or Default otherwise.
type Classifier struct {
	Table   map[string]langid.Result
	Default langid.Result
}

// New returns a [Classifier] with the given lookup table and a default of
// ("unknown", 0.0).
func New(table map[string]langid.Result) *Classifier {
	return &Classifier{Table: table, Default: langid.Result{Lang: langid.Unknown, Score: 0.0}}
}

// Predict implements [langid.Classifier].
func (c *Classifier) Predict(texts []string, k int) ([][]langid.Result, error) {
	out := make([][]langid.Result, len(texts))
	for i, t := range texts {
		r, ok := c.Table[t]
		if !ok {
			r = c.Default
		}
		out[i] = []langid.Result{r}
	}
	return out, nil
}

// Factory returns a [langid.ClassifierFactory] that always returns c — every
// worker shares the same fake table, unlike production workers which each
// hold an independent model instance.
func (c *Classifier) Factory() langid.ClassifierFactory {
	return func() (langid.Classifier, error) { return c, nil }
}
