// Package langtag offers fuzzy "did you mean" suggestions for a mistyped
// ISO-639-1 language code, so a 404 for an unsupported pair can point the
// caller at the closest code the gateway actually knows about.
package langtag

import "github.com/antzucaro/matchr"

// maxSuggestDistance bounds how many edits away a candidate may be and
// still count as a likely typo rather than an unrelated code. ISO-639-1
// codes are two characters, so Jaro-Winkler's similarity scale is too
// coarse here; edit distance on these short strings is the more faithful
// measure of "probably fat-fingered".
const maxSuggestDistance = 1

// Suggest returns the code in known closest to requested by Damerau-
// Levenshtein edit distance, and true, if that distance is within
// maxSuggestDistance. Otherwise it returns ("", false) — a caller should
// not offer a suggestion so weak it would mislead.
func Suggest(requested string, known []string) (string, bool) {
	best := ""
	bestDist := -1
	for _, k := range known {
		if k == requested {
			continue
		}
		dist := matchr.DamerauLevenshtein(requested, k)
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = k
		}
	}
	if bestDist == -1 || bestDist > maxSuggestDistance {
		return "", false
	}
	return best, true
}
