// Package extract implements pattern-anchored context extraction: raw text
// is segmented into paragraphs, a guaranteed-minimum window is carved around
// each indicator match, lexicon-driven boundary extension grows the window to
// the nearest narrative boundary, and annotation derives speakers, emotional
// markers, and domain tags from the final window.
package extract

import "strings"

// Paragraph is one segment of source text with its character offsets in the
// original input. Offsets let the extractor map a match position back to its
// containing paragraph.
type Paragraph struct {
	Text  string
	Start int
	End   int
}

// Segment splits raw text into ordered paragraphs on blank-line boundaries.
// Runs of blank lines collapse; whitespace-only segments are dropped.
func Segment(text string) []Paragraph {
	if text == "" {
		return nil
	}

	var paragraphs []Paragraph

	offset := 0
	for _, chunk := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(chunk)
		if trimmed != "" {
			start := offset + strings.Index(chunk, trimmed)
			paragraphs = append(paragraphs, Paragraph{
				Text:  trimmed,
				Start: start,
				End:   start + len(trimmed),
			})
		}
		offset += len(chunk) + 2
	}

	return paragraphs
}

// paragraphAt returns the index of the paragraph containing the given
// character offset, or -1 if the offset falls outside every paragraph
// (e.g., inside a blank-line gap).
func paragraphAt(paragraphs []Paragraph, offset int) int {
	for i, p := range paragraphs {
		if offset >= p.Start && offset < p.End {
			return i
		}
	}
	return -1
}

// joinWindow concatenates a paragraph slice back into context text using
// blank-line separators, mirroring the segmentation boundaries.
func joinWindow(paragraphs []Paragraph) string {
	parts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}
