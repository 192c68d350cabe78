// Package text provides sentence splitting, chunking, and segment derivation
// for translation and narration.
//
// Sentence boundaries are a regex heuristic: whitespace immediately following
// '.', '!', or '?'. Abbreviations, decimal numbers, and quoted punctuation are
// not handled; ambiguous boundaries are accepted as-is.
package text

import (
	"regexp"
	"strings"

	"github.com/readlingo/readlingo/internal/core"
)

// boundaryMarker is injected after terminal punctuation in place of the
// separating whitespace, then split on. It never occurs in document text.
const boundaryMarker = "\x1f"

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// SplitSentences splits text at sentence boundaries. Results are trimmed and
// empty entries dropped.
func SplitSentences(text string) []string {
	sentences := make([]string, 0, 8)
	for _, raw := range splitRaw(text) {
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	return sentences
}

// SplitChunks packs whole sentences greedily into chunks of at most maxChars
// characters, counting one separating space per sentence. The bound is
// advisory: a single sentence longer than maxChars is emitted alone. Text
// already within the bound is returned unchanged as a single chunk.
func SplitChunks(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	sentences := SplitSentences(text)

	var chunks []string

	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence)+1 <= maxChars {
			current += sentence + " "

			continue
		}

		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}

		current = sentence + " "
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}

// SentenceSegments derives sentence segments with character offsets. Offsets
// are computed against the segment-local reconstruction of the text: a running
// cursor advances by len(sentence)+1 per sentence, assuming one separating
// space, so they are not guaranteed to equal positions in the original string
// when internal whitespace varies. Segments whose trimmed text is empty are
// skipped entirely; ids are dense over retained sentences, starting at 0.
func SentenceSegments(text string) []core.Segment {
	var segments []core.Segment

	cursor := 0
	for _, raw := range splitRaw(text) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}

		segments = append(segments, core.Segment{
			ID:        len(segments),
			Text:      trimmed,
			StartChar: cursor,
			EndChar:   cursor + len(raw),
		})
		cursor += len(raw) + 1
	}

	return segments
}

// WordSegments derives word-level segments for word-by-word highlighting.
// Unlike sentence segments, offsets here are true positions in the input.
func WordSegments(text string) []core.Segment {
	var segments []core.Segment

	pos := 0
	for _, word := range strings.Fields(text) {
		start := strings.Index(text[pos:], word)
		if start < 0 {
			continue
		}

		start += pos
		segments = append(segments, core.Segment{
			ID:        len(segments),
			Text:      word,
			StartChar: start,
			EndChar:   start + len(word),
		})
		pos = start + len(word)
	}

	return segments
}

// splitRaw splits at sentence boundaries without trimming or filtering, so
// callers that track offsets see the raw sentence lengths.
func splitRaw(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1"+boundaryMarker)

	return strings.Split(marked, boundaryMarker)
}
