package extract

import "strings"

// Lexicon holds the cue phrase lists that drive boundary extension and
// extended-context detection. Lists are plain phrases matched
// case-insensitively, kept configurable so heuristics can be tuned without
// touching the extraction logic.
type Lexicon struct {
	// BeginCues signal that a narrative started earlier than the current
	// window start ("let me tell you", "for instance").
	BeginCues []string

	// EndCues signal that a narrative continues past the current window
	// end ("in conclusion", "finally").
	EndCues []string

	// TopicShiftCues at the start of a paragraph stop forward extension
	// early ("now,", "next,").
	TopicShiftCues []string

	// BackRefCues inside a window trigger extended-context capture
	// ("as we discussed", "previously").
	BackRefCues []string
}

// DefaultLexicon returns the built-in cue phrase lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		BeginCues: []string{
			"let me tell you",
			"for instance",
			"for example",
			"imagine",
			"picture this",
			"once upon",
			"it all started",
			"here's the story",
		},
		EndCues: []string{
			"in conclusion",
			"finally",
			"to sum up",
			"in the end",
			"and that's how",
			"the moral",
		},
		TopicShiftCues: []string{
			"now,",
			"next,",
			"anyway,",
			"moving on",
			"on another note",
		},
		BackRefCues: []string{
			"as we discussed",
			"as i mentioned",
			"previously",
			"earlier",
			"like before",
			"remember when",
		},
	}
}

// merged returns l with any empty list replaced by the default list.
func (l Lexicon) merged() Lexicon {
	d := DefaultLexicon()
	if len(l.BeginCues) == 0 {
		l.BeginCues = d.BeginCues
	}
	if len(l.EndCues) == 0 {
		l.EndCues = d.EndCues
	}
	if len(l.TopicShiftCues) == 0 {
		l.TopicShiftCues = d.TopicShiftCues
	}
	if len(l.BackRefCues) == 0 {
		l.BackRefCues = d.BackRefCues
	}
	return l
}

// containsAny reports whether text contains any cue phrase,
// case-insensitively.
func containsAny(text string, cues []string) bool {
	lower := strings.ToLower(text)
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// startsWithAny reports whether text begins with any cue phrase,
// case-insensitively.
func startsWithAny(text string, cues []string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, cue := range cues {
		if strings.HasPrefix(lower, cue) {
			return true
		}
	}
	return false
}

// endsTerminal reports whether a paragraph ends in terminal punctuation.
// A paragraph that does not is treated as a mid-thought continuation.
func endsTerminal(text string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(text), `"')]*_`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', ':':
		return true
	}
	return false
}
