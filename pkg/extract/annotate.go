package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/amberhq/amber/pkg/record"
)

var (
	speakerLineRe = regexp.MustCompile(`(?m)^([A-Z][A-Za-z .'\-]{0,39}):\s*(\S.*)$`)

	emphasisCapsRe = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	emphasisStarRe = regexp.MustCompile(`\*[^*\n]+\*`)
	pauseRe        = regexp.MustCompile(`\.\.\.|…`)
	toneShiftRe    = regexp.MustCompile(`(?mi)^(but|however|suddenly|on the other hand|then again)\b`)
)

// Annotator derives speaker segments, emotional markers, and domain tags
// from a paragraph window. Annotation is descriptive only: nothing it
// produces feeds back into the extraction boundary.
type Annotator struct {
	tagKeywords map[string][]string
}

// NewAnnotator creates an annotator with the default domain-tag lexicon.
// Pass a non-nil map to override it.
func NewAnnotator(tagKeywords map[string][]string) *Annotator {
	if tagKeywords == nil {
		tagKeywords = defaultTagKeywords()
	}
	return &Annotator{tagKeywords: tagKeywords}
}

func defaultTagKeywords() map[string][]string {
	return map[string][]string{
		"technical": {"code", "api", "database", "server", "deploy", "bug", "function"},
		"planning":  {"plan", "schedule", "deadline", "milestone", "next week", "roadmap"},
		"decision":  {"decide", "decision", "chose", "agreed", "settled on"},
		"personal":  {"family", "feel", "felt", "remember", "childhood", "friend"},
		"story":     {"story", "once", "happened", "told me", "years ago"},
	}
}

// Annotate computes all annotations for a context window. The window is the
// joined paragraph text exactly as it will be persisted, so all offsets are
// valid into the stored full context.
func (a *Annotator) Annotate(window string) ([]record.SpeakerSegment, []record.EmotionalMarker, []string, error) {
	if window == "" {
		return nil, nil, nil, fmt.Errorf("empty window")
	}

	speakers := a.speakers(window)
	markers := a.markers(window)
	tags := a.domainTags(window)

	return speakers, markers, tags, nil
}

// speakers finds dialogue attributed to named speakers on "Name: text"
// lines. Offsets cover the quoted text, not the name.
func (a *Annotator) speakers(window string) []record.SpeakerSegment {
	var segments []record.SpeakerSegment

	for _, m := range speakerLineRe.FindAllStringSubmatchIndex(window, -1) {
		name := strings.TrimSpace(window[m[2]:m[3]])
		quoted := window[m[4]:m[5]]

		segments = append(segments, record.SpeakerSegment{
			Speaker: name,
			Text:    quoted,
			Start:   m[4],
			End:     m[5],
		})
	}

	return segments
}

// markers scans the window for emphasis, pauses, and tone shifts.
func (a *Annotator) markers(window string) []record.EmotionalMarker {
	var markers []record.EmotionalMarker

	for _, m := range emphasisCapsRe.FindAllStringIndex(window, -1) {
		markers = append(markers, record.EmotionalMarker{
			Type:        record.MarkerEmphasis,
			Start:       m[0],
			End:         m[1],
			Description: "capitalized emphasis: " + window[m[0]:m[1]],
		})
	}

	for _, m := range emphasisStarRe.FindAllStringIndex(window, -1) {
		markers = append(markers, record.EmotionalMarker{
			Type:        record.MarkerEmphasis,
			Start:       m[0],
			End:         m[1],
			Description: "starred emphasis",
		})
	}

	for _, m := range pauseRe.FindAllStringIndex(window, -1) {
		markers = append(markers, record.EmotionalMarker{
			Type:        record.MarkerPause,
			Start:       m[0],
			End:         m[1],
			Description: "pause",
		})
	}

	for _, m := range toneShiftRe.FindAllStringIndex(window, -1) {
		markers = append(markers, record.EmotionalMarker{
			Type:        record.MarkerToneShift,
			Start:       m[0],
			End:         m[1],
			Description: "tone shift: " + strings.ToLower(window[m[0]:m[1]]),
		})
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].Start < markers[j].Start })

	return markers
}

// domainTags returns the sorted set of tags whose keyword lists hit the
// window.
func (a *Annotator) domainTags(window string) []string {
	lower := strings.ToLower(window)

	var tags []string
	for tag, keywords := range a.tagKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}

	sort.Strings(tags)

	return tags
}
