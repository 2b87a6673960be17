package extract_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amberhq/amber/pkg/extract"
)

func paragraphs(texts ...string) []extract.Paragraph {
	out := make([]extract.Paragraph, len(texts))
	offset := 0
	for i, t := range texts {
		out[i] = extract.Paragraph{Text: t, Start: offset, End: offset + len(t)}
		offset += len(t) + 2
	}
	return out
}

var _ = Describe("Extender", func() {
	var extender *extract.Extender

	BeforeEach(func() {
		extender = extract.NewExtender(extract.Lexicon{})
	})

	Describe("backward extension", func() {
		It("stops at a terminally punctuated paragraph without cues", func() {
			ps := paragraphs(
				"A complete thought.",
				"Another complete thought.",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 2, extract.Backward)).To(Equal(2))
		})

		It("pulls in a preceding narrative-begin cue", func() {
			ps := paragraphs(
				"A complete thought.",
				"Let me tell you about the outage.",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 2, extract.Backward)).To(Equal(1))
		})

		It("pulls in mid-thought continuations without terminal punctuation", func() {
			ps := paragraphs(
				"A complete thought.",
				"and then it kept going",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 2, extract.Backward)).To(Equal(1))
		})

		It("walks through consecutive cues to the narrative start", func() {
			ps := paragraphs(
				"Unrelated paragraph.",
				"Let me tell you what happened.",
				"it all started on a tuesday",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 3, extract.Backward)).To(Equal(1))
		})

		It("never walks past the first paragraph", func() {
			ps := paragraphs(
				"no punctuation here either",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 1, extract.Backward)).To(Equal(0))
		})
	})

	Describe("forward extension", func() {
		It("stops at a terminally punctuated boundary", func() {
			ps := paragraphs(
				"The match lives here.",
				"A following thought.",
			)
			Expect(extender.Extend(ps, 1, extract.Forward)).To(Equal(1))
		})

		It("pulls in a narrative-end cue", func() {
			ps := paragraphs(
				"The match lives here.",
				"In conclusion, it worked out.",
				"Unrelated paragraph.",
			)
			Expect(extender.Extend(ps, 1, extract.Forward)).To(Equal(2))
		})

		It("keeps extending while the trailing paragraph is unterminated", func() {
			ps := paragraphs(
				"The match keeps going",
				"and going some more",
				"until it finally stops.",
				"Unrelated paragraph.",
			)
			Expect(extender.Extend(ps, 1, extract.Forward)).To(Equal(3))
		})

		It("stops early at a topic-shift opener", func() {
			ps := paragraphs(
				"The match keeps going",
				"Now, something completely different.",
			)
			Expect(extender.Extend(ps, 1, extract.Forward)).To(Equal(1))
		})

		It("never walks past the last paragraph", func() {
			ps := paragraphs(
				"The match keeps going",
				"and going without end",
			)
			Expect(extender.Extend(ps, 1, extract.Forward)).To(Equal(2))
		})
	})

	Describe("custom lexicons", func() {
		It("uses configured cues instead of the defaults", func() {
			extender = extract.NewExtender(extract.Lexicon{
				BeginCues: []string{"backstory:"},
			})
			ps := paragraphs(
				"Backstory: the server had been flaky for weeks.",
				"The match lives here.",
			)
			Expect(extender.Extend(ps, 1, extract.Backward)).To(Equal(0))
		})
	})
})
