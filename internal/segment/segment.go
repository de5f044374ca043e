// Package segment splits text blobs into sentence units and reassembles them
// while preserving paragraph structure. It is grounded on quickmt's
// translator.py sentence_split/_sentence_join helpers, generalized to an
// interface-swappable sentence-boundary detector.
package segment

import (
	"strings"
	"unicode/utf8"
)

// Detector splits a single paragraph into sentences. Production code backs
// this with a real sentence-boundary model; tests use a punctuation-based
// stand-in.
type Detector interface {
	Sentences(paragraph string) []string
}

// shortFragment is the length threshold below which a sentence is treated as
// a mis-split fragment (e.g. "Dr." truncated from "Dr. Smith") and merged
// into the previous sentence rather than kept standalone.
const shortFragment = 5

// Split breaks each input text into paragraphs (on line breaks) and each
// paragraph into sentences via det. It returns three parallel slices:
// inputIDs and paragraphIDs locate each sentence within the original inputs,
// and sentences holds the trimmed sentence text. Empty sentences are
// discarded. A sentence shorter than [shortFragment] characters that
// immediately follows another sentence within the same input and paragraph
// is appended to the previous sentence with a single-space separator.
func Split(det Detector, texts []string) (inputIDs, paragraphIDs []int, sentences []string) {
	for inputIdx, text := range texts {
		paragraphs := splitParagraphs(text)
		for paraIdx, paragraph := range paragraphs {
			for _, raw := range det.Sentences(paragraph) {
				s := strings.TrimSpace(raw)
				if s == "" {
					continue
				}
				if len(sentences) > 0 &&
					inputIDs[len(inputIDs)-1] == inputIdx &&
					paragraphIDs[len(paragraphIDs)-1] == paraIdx &&
					utf8.RuneCountInString(s) < shortFragment {
					sentences[len(sentences)-1] += " " + s
					continue
				}
				inputIDs = append(inputIDs, inputIdx)
				paragraphIDs = append(paragraphIDs, paraIdx)
				sentences = append(sentences, s)
			}
		}
	}
	return inputIDs, paragraphIDs, sentences
}

// splitParagraphs breaks text on line breaks, matching Python's
// str.splitlines() semantics closely enough for this use (CRLF, LF, and CR
// are all paragraph breaks); trailing empty paragraphs from a final newline
// are dropped.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(normalized, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

// Join is the inverse of Split: it reassembles length outputs from the
// parallel inputIDs/paragraphIDs/sentences slices produced by (a prior call
// to) Split. Within one input, consecutive sentences sharing a paragraph ID
// are joined with a single space; a paragraph change emits a newline.
func Join(inputIDs, paragraphIDs []int, sentences []string, length int) []string {
	out := make([]string, length)
	lastParagraph := make([]int, length)
	started := make([]bool, length)

	for i, s := range sentences {
		idx := inputIDs[i]
		para := paragraphIDs[i]
		switch {
		case !started[idx]:
			out[idx] = s
			started[idx] = true
		case para == lastParagraph[idx]:
			out[idx] += " " + s
		default:
			out[idx] += "\n" + s
		}
		lastParagraph[idx] = para
	}
	return out
}
