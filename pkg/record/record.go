// Package record defines the domain types for the amber context engine:
// context records captured from source text, the sessions they belong to,
// and the bridges that carry context between sessions.
//
// A ContextRecord is created once by the extractor and is logically
// immutable afterward. Re-storing a record with the same ID rewrites every
// tier; it never mutates the in-memory value.
package record

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MarkerType classifies an emotional marker found in a context window.
type MarkerType string

const (
	MarkerEmphasis  MarkerType = "emphasis"
	MarkerPause     MarkerType = "pause"
	MarkerToneShift MarkerType = "tone_shift"
)

// SpeakerSegment is a quoted span attributed to a named speaker.
// Offsets are character positions within the full context window.
// Segments are derived during annotation and are not persisted
// independently of their record.
type SpeakerSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// EmotionalMarker annotates a span of the context window. Markers are
// purely descriptive; once computed they never affect extraction bounds.
type EmotionalMarker struct {
	Type        MarkerType `json:"type"`
	Start       int        `json:"start"`
	End         int        `json:"end"`
	Description string     `json:"description"`
}

// RelatedPattern links a record to another record by ID.
type RelatedPattern struct {
	ID       string  `json:"id"`
	Relation string  `json:"relation"`
	Strength float64 `json:"strength"`
}

// SourceInfo describes where a context record was captured from.
type SourceInfo struct {
	File      string    `json:"file,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Date      time.Time `json:"date,omitempty"`
}

// ContextRecord is the immutable unit of preserved context around one
// matched indicator.
type ContextRecord struct {
	// ID is the globally unique identifier minted at creation. It is used
	// as the join key across every storage tier.
	ID string `json:"id"`

	// PatternType is the category derived from the matched indicator.
	PatternType string `json:"pattern_type"`

	// MatchText is the exact text the indicator matched.
	MatchText string `json:"match_text"`

	// FullContext is the concatenated paragraph window around the match.
	// It is never truncated.
	FullContext string `json:"full_context"`

	// ExtendedContext holds additional paragraphs pulled in when
	// back-reference cues were detected. Kept separate from FullContext.
	ExtendedContext string `json:"extended_context,omitempty"`

	Speakers        []SpeakerSegment  `json:"speakers,omitempty"`
	Markers         []EmotionalMarker `json:"markers,omitempty"`
	DomainTags      []string          `json:"domain_tags,omitempty"`
	RelatedPatterns []RelatedPattern  `json:"related_patterns,omitempty"`

	Source SourceInfo `json:"source"`

	// ExtractedAt is the extraction timestamp.
	ExtractedAt time.Time `json:"extracted_at"`
}

// Clone returns a deep copy sharing no slice backing with the original,
// so holders of a clone cannot mutate annotation slices out from under
// other holders.
func (r *ContextRecord) Clone() *ContextRecord {
	out := *r
	out.Speakers = slices.Clone(r.Speakers)
	out.Markers = slices.Clone(r.Markers)
	out.DomainTags = slices.Clone(r.DomainTags)
	out.RelatedPatterns = slices.Clone(r.RelatedPatterns)
	return &out
}

// NewContextRecord mints a record with a fresh UUID and the current time.
func NewContextRecord(patternType, matchText, fullContext string, source SourceInfo) *ContextRecord {
	return &ContextRecord{
		ID:          uuid.NewString(),
		PatternType: patternType,
		MatchText:   matchText,
		FullContext: fullContext,
		Source:      source,
		ExtractedAt: time.Now().UTC(),
	}
}
