package extract

// Direction selects which way the boundary extender walks.
type Direction int

const (
	// Backward walks toward the start of the text.
	Backward Direction = iota
	// Forward walks toward the end of the text.
	Forward
)

// Extender grows a paragraph window outward to the nearest narrative
// boundary using lexical cues. Extension only ever grows a window; the
// returned index is never inside the original bounds. Ambiguous cues favor
// inclusion over precision.
type Extender struct {
	lexicon Lexicon
}

// NewExtender creates an extender over the given cue lexicon. Empty cue
// lists fall back to the defaults.
func NewExtender(lexicon Lexicon) *Extender {
	return &Extender{lexicon: lexicon.merged()}
}

// Extend walks outward from index and returns the new window bound.
// For Backward, index is the inclusive window start; for Forward, the
// exclusive window end.
func (e *Extender) Extend(paragraphs []Paragraph, index int, direction Direction) int {
	if direction == Backward {
		return e.extendBackward(paragraphs, index)
	}
	return e.extendForward(paragraphs, index)
}

// extendBackward keeps pulling in the previous paragraph while it is a
// narrative-begin cue or a mid-thought continuation (no terminal
// punctuation). It stops without consuming the first paragraph that ends
// terminally and carries no begin cue.
func (e *Extender) extendBackward(paragraphs []Paragraph, start int) int {
	for start > 0 {
		prev := paragraphs[start-1].Text
		if prev == "" {
			break
		}
		if containsAny(prev, e.lexicon.BeginCues) {
			start--
			continue
		}
		if !endsTerminal(prev) {
			start--
			continue
		}
		break
	}
	return start
}

// extendForward mirrors extendBackward: narrative-end cues and unterminated
// trailing paragraphs keep the window growing, a topic-shift opener stops
// it early.
func (e *Extender) extendForward(paragraphs []Paragraph, end int) int {
	for end < len(paragraphs) {
		next := paragraphs[end].Text
		if next == "" {
			break
		}
		if startsWithAny(next, e.lexicon.TopicShiftCues) {
			break
		}
		if containsAny(next, e.lexicon.EndCues) {
			end++
			continue
		}
		if end > 0 && !endsTerminal(paragraphs[end-1].Text) {
			end++
			continue
		}
		break
	}
	return end
}
