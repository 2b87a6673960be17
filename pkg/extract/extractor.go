package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/record"
)

const (
	// minRadius is the number of paragraphs included on each side of a
	// match before boundary extension runs. The guaranteed-minimum window
	// is [match-minRadius, match+minRadius] inclusive when the source has
	// room on both sides.
	minRadius = 5

	// extendedRadius caps how many additional paragraphs per side the
	// extended-context capture may pull beyond the final window.
	extendedRadius = 10
)

// Storer persists a context record across all tiers. Satisfied by
// tiered.Store; kept minimal so extraction does not depend on the storage
// orchestrator.
type Storer interface {
	Store(ctx context.Context, rec *record.ContextRecord) error
}

// Config holds extractor tuning knobs. The zero value uses the default
// lexicon and annotator.
type Config struct {
	// Lexicon overrides the cue phrase lists.
	Lexicon Lexicon

	// TagKeywords overrides the annotator's domain-tag lexicon.
	TagKeywords map[string][]string
}

// Extractor builds one immutable ContextRecord per indicator occurrence in
// source text and persists each through the configured Storer.
type Extractor struct {
	storer    Storer
	extender  *Extender
	annotator *Annotator
	lexicon   Lexicon
	logger    *zap.Logger
}

// NewExtractor creates an extractor. The storer may be nil, in which case
// Extract only builds records without persisting them.
func NewExtractor(c Config, storer Storer, logger *zap.Logger) *Extractor {
	lexicon := c.Lexicon.merged()

	return &Extractor{
		storer:    storer,
		extender:  NewExtender(lexicon),
		annotator: NewAnnotator(c.TagKeywords),
		lexicon:   lexicon,
		logger:    logger,
	}
}

// Extract finds every occurrence of every indicator in text and produces
// one ContextRecord per occurrence. Empty text or indicators yield an empty
// result. Unusable indicators and unresolvable occurrences are skipped with
// a log line, never a failure.
func (e *Extractor) Extract(ctx context.Context, text string, indicators []string, source record.SourceInfo) ([]*record.ContextRecord, error) {
	if text == "" || len(indicators) == 0 {
		return nil, nil
	}

	paragraphs := Segment(text)
	if len(paragraphs) == 0 {
		return nil, nil
	}

	var records []*record.ContextRecord

	for _, indicator := range indicators {
		for _, offset := range e.occurrences(text, indicator) {
			idx := paragraphAt(paragraphs, offset.start)
			if idx < 0 {
				e.logger.Warn("skipping occurrence outside any paragraph",
					zap.String("indicator", indicator),
					zap.Int("offset", offset.start),
				)
				continue
			}

			rec := e.buildRecord(paragraphs, idx, indicator, text[offset.start:offset.end], source)
			records = append(records, rec)

			if e.storer != nil {
				if err := e.storer.Store(ctx, rec); err != nil {
					e.logger.Error("storing context record failed",
						zap.String("id", rec.ID),
						zap.Error(err),
					)
				}
			}
		}
	}

	return records, nil
}

type span struct {
	start, end int
}

// occurrences returns every match span for an indicator: exact substring
// matches first, falling back to a case-insensitive regex interpretation
// when there are none. An invalid regex means no fallback matches.
func (e *Extractor) occurrences(text, indicator string) []span {
	if indicator == "" {
		return nil
	}

	var spans []span

	from := 0
	for {
		i := strings.Index(text[from:], indicator)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, span{start: start, end: start + len(indicator)})
		from = start + len(indicator)
	}

	if len(spans) > 0 {
		return spans
	}

	re, err := regexp.Compile("(?i)" + indicator)
	if err != nil {
		e.logger.Debug("indicator is not a usable regex, treating as no matches",
			zap.String("indicator", indicator),
			zap.Error(err),
		)
		return nil
	}

	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[1] > m[0] {
			spans = append(spans, span{start: m[0], end: m[1]})
		}
	}

	return spans
}

// buildRecord carves the window around the matched paragraph, runs boundary
// extension and annotation, and assembles the record.
func (e *Extractor) buildRecord(paragraphs []Paragraph, idx int, indicator, matched string, source record.SourceInfo) *record.ContextRecord {
	lo := max(0, idx-minRadius)
	hi := min(len(paragraphs), idx+minRadius+1)

	// Boundary extension may only grow the window.
	lo = e.extender.Extend(paragraphs, lo, Backward)
	hi = e.extender.Extend(paragraphs, hi, Forward)

	window := paragraphs[lo:hi]
	fullContext := joinWindow(window)

	rec := record.NewContextRecord(classifyIndicator(indicator), matched, fullContext, source)

	speakers, markers, tags, err := e.annotator.Annotate(fullContext)
	if err != nil {
		// Annotation failures are non-fatal; the record ships with empty
		// annotation lists.
		e.logger.Warn("annotation failed",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	} else {
		rec.Speakers = speakers
		rec.Markers = markers
		rec.DomainTags = tags
	}

	if containsAny(fullContext, e.lexicon.BackRefCues) {
		rec.ExtendedContext = e.extendedContext(paragraphs, lo, hi)
	}

	return rec
}

// extendedContext pulls up to extendedRadius additional paragraphs on each
// side beyond the already-extended window. The result is stored separately
// and never merged into the full context.
func (e *Extractor) extendedContext(paragraphs []Paragraph, lo, hi int) string {
	extLo := max(0, lo-extendedRadius)
	extHi := min(len(paragraphs), hi+extendedRadius)

	var parts []string
	if extLo < lo {
		parts = append(parts, joinWindow(paragraphs[extLo:lo]))
	}
	if hi < extHi {
		parts = append(parts, joinWindow(paragraphs[hi:extHi]))
	}

	return strings.Join(parts, "\n\n")
}

// classifyIndicator derives a coarse pattern type from the indicator text.
func classifyIndicator(indicator string) string {
	lower := strings.ToLower(indicator)

	switch {
	case strings.Contains(lower, "decide"), strings.Contains(lower, "decision"):
		return "decision"
	case strings.Contains(lower, "remember"), strings.Contains(lower, "recall"):
		return "memory"
	case strings.Contains(lower, "feel"), strings.Contains(lower, "felt"):
		return "emotional"
	case strings.Contains(lower, "?"):
		return "question"
	default:
		return "reference"
	}
}
