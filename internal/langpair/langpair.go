// Package langpair holds the small, dependency-free types shared across
// lingaserve's registry, manager, runner, and orchestrator packages: the
// language-pair key, model descriptor, and request fingerprint.
package langpair

import (
	"fmt"
	"sort"
	"strings"
)

// Pair is a (src, tgt) key of ISO-639-1 lowercase language codes. It keys the
// registry and the model manager's LRU.
type Pair struct {
	Src string
	Tgt string
}

// String renders the pair as "src-tgt", the rendering used at the HTTP
// boundary (see lingaserve's health/models endpoints).
func (p Pair) String() string {
	return p.Src + "-" + p.Tgt
}

// Descriptor is an immutable registry entry describing a discoverable model.
type Descriptor struct {
	ID          string
	Src         string
	Tgt         string
	ArtifactRef string

	// Files lists the artifact's member paths as reported by the
	// catalogue, used to filter out ignored paths before fetching.
	Files []string
}

// Pair returns the descriptor's language pair.
func (d Descriptor) Pair() Pair {
	return Pair{Src: d.Src, Tgt: d.Tgt}
}

// Params is the translation parameter set accepted by the HTTP API and
// threaded down to the inference adapter unchanged. Zero values are replaced
// with the documented defaults by the HTTP layer before reaching the
// orchestrator.
type Params struct {
	BeamSize          int
	Patience          int
	LengthPenalty     float64
	CoveragePenalty   float64
	RepetitionPenalty float64
	MaxDecodingLength int
}

// Canonical renders params as a fixed-order "key=value;..." string so equal
// parameter sets produce identical fingerprints regardless of construction
// order — the Go analogue of sorting a Python kwargs dict before hashing it.
func (p Params) Canonical() string {
	kv := []string{
		fmt.Sprintf("beam_size=%d", p.BeamSize),
		fmt.Sprintf("patience=%d", p.Patience),
		fmt.Sprintf("length_penalty=%g", p.LengthPenalty),
		fmt.Sprintf("coverage_penalty=%g", p.CoveragePenalty),
		fmt.Sprintf("repetition_penalty=%g", p.RepetitionPenalty),
		fmt.Sprintf("max_decoding_length=%d", p.MaxDecodingLength),
	}
	sort.Strings(kv)
	return strings.Join(kv, ";")
}

// Fingerprint uniquely identifies a cacheable translation request.
type Fingerprint struct {
	SrcText         string
	SrcLang         string
	TgtLang         string
	ParamsCanonical string
}

// Key renders the fingerprint as a single string suitable for use as a map
// key.
func (f Fingerprint) Key() string {
	return f.SrcText + "\x00" + f.SrcLang + "\x00" + f.TgtLang + "\x00" + f.ParamsCanonical
}

// NewFingerprint builds a [Fingerprint] for one translation job.
func NewFingerprint(srcText, srcLang, tgtLang string, params Params) Fingerprint {
	return Fingerprint{
		SrcText:         srcText,
		SrcLang:         srcLang,
		TgtLang:         tgtLang,
		ParamsCanonical: params.Canonical(),
	}
}
