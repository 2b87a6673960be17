package extract_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amberhq/amber/pkg/extract"
)

var _ = Describe("Segment", func() {
	It("returns nil for empty text", func() {
		Expect(extract.Segment("")).To(BeNil())
	})

	It("splits paragraphs on blank lines", func() {
		paragraphs := extract.Segment("First paragraph.\n\nSecond paragraph.\n\nThird.")
		Expect(paragraphs).To(HaveLen(3))
		Expect(paragraphs[0].Text).To(Equal("First paragraph."))
		Expect(paragraphs[1].Text).To(Equal("Second paragraph."))
		Expect(paragraphs[2].Text).To(Equal("Third."))
	})

	It("tracks character offsets into the original text", func() {
		text := "First paragraph.\n\nSecond paragraph."
		paragraphs := extract.Segment(text)
		Expect(paragraphs).To(HaveLen(2))
		Expect(text[paragraphs[0].Start:paragraphs[0].End]).To(Equal("First paragraph."))
		Expect(text[paragraphs[1].Start:paragraphs[1].End]).To(Equal("Second paragraph."))
	})

	It("drops whitespace-only segments", func() {
		paragraphs := extract.Segment("One.\n\n   \n\nTwo.")
		Expect(paragraphs).To(HaveLen(2))
		Expect(paragraphs[0].Text).To(Equal("One."))
		Expect(paragraphs[1].Text).To(Equal("Two."))
	})

	It("trims surrounding whitespace but keeps offsets aligned", func() {
		text := "  Padded paragraph.  \n\nNext."
		paragraphs := extract.Segment(text)
		Expect(paragraphs).To(HaveLen(2))
		Expect(paragraphs[0].Text).To(Equal("Padded paragraph."))
		Expect(text[paragraphs[0].Start:paragraphs[0].End]).To(Equal("Padded paragraph."))
	})

	It("handles a single paragraph with no separators", func() {
		paragraphs := extract.Segment("Only one paragraph here.")
		Expect(paragraphs).To(HaveLen(1))
		Expect(paragraphs[0].Start).To(Equal(0))
	})
})
