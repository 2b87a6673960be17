package sqlite_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
	"github.com/amberhq/amber/pkg/storage/sqlite"
)

func fullRecord(id string) *record.ContextRecord {
	return &record.ContextRecord{
		ID:              id,
		PatternType:     "decision",
		MatchText:       "decided to",
		FullContext:     "We decided to migrate the database.",
		ExtendedContext: "Earlier discussion about migrations.",
		Speakers: []record.SpeakerSegment{
			{Speaker: "Alice", Text: "let's migrate", Start: 0, End: 13},
		},
		Markers: []record.EmotionalMarker{
			{Type: record.MarkerEmphasis, Start: 3, End: 10, Description: "capitalized emphasis"},
		},
		DomainTags: []string{"decision", "technical"},
		RelatedPatterns: []record.RelatedPattern{
			{ID: "other-rec", Relation: "follows", Strength: 0.8},
		},
		Source: record.SourceInfo{
			File:      "notes.txt",
			SessionID: "s-1",
			Date:      time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		ExtractedAt: time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

var _ = Describe("sqlite storage driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		driver, err = sqlite.NewDriver(filepath.Join(GinkgoT().TempDir(), "amber.db"))
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		DeferCleanup(func() { driver.Close() })
	})

	Describe("records", func() {
		It("round-trips a record with all derived rows", func() {
			rec := fullRecord("r1")
			Expect(driver.PutRecord(ctx, rec)).To(Succeed())

			got, err := driver.GetRecord(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PatternType).To(Equal("decision"))
			Expect(got.FullContext).To(Equal(rec.FullContext))
			Expect(got.ExtendedContext).To(Equal(rec.ExtendedContext))
			Expect(got.Speakers).To(Equal(rec.Speakers))
			Expect(got.Markers).To(Equal(rec.Markers))
			Expect(got.DomainTags).To(Equal(rec.DomainTags))
			Expect(got.RelatedPatterns).To(Equal(rec.RelatedPatterns))
			Expect(got.Source).To(Equal(rec.Source))
			Expect(got.ExtractedAt.Equal(rec.ExtractedAt)).To(BeTrue())
		})

		It("returns a typed not-found error for unknown ids", func() {
			_, err := driver.GetRecord(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})

		It("re-stores an existing id without duplicating derived rows", func() {
			rec := fullRecord("r1")
			Expect(driver.PutRecord(ctx, rec)).To(Succeed())

			rec.DomainTags = []string{"planning"}
			rec.FullContext = "Updated context."
			Expect(driver.PutRecord(ctx, rec)).To(Succeed())

			got, err := driver.GetRecord(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.FullContext).To(Equal("Updated context."))
			Expect(got.DomainTags).To(Equal([]string{"planning"}))
			Expect(got.Speakers).To(HaveLen(1))

			stats, err := driver.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Records).To(Equal(1))
		})

		It("deletes a record and its derived rows", func() {
			Expect(driver.PutRecord(ctx, fullRecord("r1"))).To(Succeed())
			Expect(driver.DeleteRecord(ctx, "r1")).To(Succeed())

			_, err := driver.GetRecord(ctx, "r1")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "r1"}))
		})

		It("treats deleting a missing id as a no-op", func() {
			Expect(driver.DeleteRecord(ctx, "never-existed")).To(Succeed())
		})
	})

	Describe("SearchText", func() {
		BeforeEach(func() {
			older := fullRecord("older")
			older.FullContext = "The database migration plan."
			older.ExtractedAt = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

			newer := fullRecord("newer")
			newer.FullContext = "The database rollback plan."
			newer.DomainTags = []string{"planning"}
			newer.ExtractedAt = time.Date(2025, 5, 1, 11, 0, 0, 0, time.UTC)

			unrelated := fullRecord("unrelated")
			unrelated.FullContext = "Lunch options near the office."
			unrelated.MatchText = "lunch"
			unrelated.ExtendedContext = ""

			for _, rec := range []*record.ContextRecord{older, newer, unrelated} {
				Expect(driver.PutRecord(ctx, rec)).To(Succeed())
			}
		})

		It("matches substrings newest first", func() {
			got, err := driver.SearchText(ctx, "database", 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].ID).To(Equal("newer"))
			Expect(got[1].ID).To(Equal("older"))
		})

		It("applies the limit", func() {
			got, err := driver.SearchText(ctx, "database", 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal("newer"))
		})

		It("filters by domain tags", func() {
			got, err := driver.SearchText(ctx, "database", 10, []string{"planning"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal("newer"))
		})

		It("returns empty for no matches", func() {
			got, err := driver.SearchText(ctx, "nonexistent needle", 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})
	})

	Describe("sessions and messages", func() {
		It("round-trips a session", func() {
			ended := time.Date(2025, 5, 2, 18, 0, 0, 0, time.UTC)
			sess := &record.SessionRecord{
				ID:        "s-1",
				Kind:      record.SourceChat,
				CreatedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
				EndedAt:   &ended,
			}
			Expect(driver.PutSession(ctx, sess)).To(Succeed())

			got, err := driver.GetSession(ctx, "s-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Kind).To(Equal(record.SourceChat))
			Expect(got.EndedAt).NotTo(BeNil())
			Expect(got.EndedAt.Equal(ended)).To(BeTrue())
		})

		It("returns messages in creation order with their context links", func() {
			base := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

			second := &record.Message{
				ID: "m2", SessionID: "s-1", Role: "assistant",
				Content: "second", CreatedAt: base.Add(time.Minute),
				ContextIDs: []string{"r2"},
			}
			first := &record.Message{
				ID: "m1", SessionID: "s-1", Role: "user",
				Content: "first", CreatedAt: base,
				ContextIDs: []string{"r1"},
			}

			Expect(driver.PutMessage(ctx, second)).To(Succeed())
			Expect(driver.PutMessage(ctx, first)).To(Succeed())

			msgs, err := driver.SessionMessages(ctx, "s-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].ID).To(Equal("m1"))
			Expect(msgs[1].ID).To(Equal("m2"))
			Expect(msgs[0].ContextIDs).To(Equal([]string{"r1"}))
		})

		It("unions message-linked and source-attributed record ids", func() {
			linked := fullRecord("linked")
			linked.Source.SessionID = ""
			Expect(driver.PutRecord(ctx, linked)).To(Succeed())

			attributed := fullRecord("attributed")
			attributed.Source.SessionID = "s-1"
			Expect(driver.PutRecord(ctx, attributed)).To(Succeed())

			both := fullRecord("both")
			both.Source.SessionID = "s-1"
			Expect(driver.PutRecord(ctx, both)).To(Succeed())

			msg := &record.Message{
				ID: "m1", SessionID: "s-1", Role: "user",
				Content: "hi", CreatedAt: time.Now().UTC(),
				ContextIDs: []string{"linked", "both"},
			}
			Expect(driver.PutMessage(ctx, msg)).To(Succeed())

			ids, err := driver.SessionRecordIDs(ctx, "s-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("linked", "attributed", "both"))
		})
	})

	Describe("bridges", func() {
		newBridge := func(id, from, to string, createdAt time.Time) *record.BridgeRecord {
			return &record.BridgeRecord{
				ID:            id,
				FromSessionID: from,
				ToSessionID:   to,
				Summary:       "carried context",
				Messages: []record.Message{
					{ID: "m1", SessionID: from, Role: "user", Content: "hello", CreatedAt: createdAt},
				},
				ContextIDs: []string{"r1", "r2"},
				CreatedAt:  createdAt,
			}
		}

		It("round-trips a bridge with its payload", func() {
			created := time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC)
			Expect(driver.PutBridge(ctx, newBridge("b1", "s-1", "s-2", created))).To(Succeed())

			got, err := driver.GetBridge(ctx, "b1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.FromSessionID).To(Equal("s-1"))
			Expect(got.ToSessionID).To(Equal("s-2"))
			Expect(got.ContextIDs).To(Equal([]string{"r1", "r2"}))
			Expect(got.Messages).To(HaveLen(1))
			Expect(got.Messages[0].Content).To(Equal("hello"))
		})

		It("returns a typed not-found error for unknown bridges", func() {
			_, err := driver.GetBridge(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})

		It("lists inbound bridges for a session in creation order", func() {
			base := time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC)
			Expect(driver.PutBridge(ctx, newBridge("b2", "s-1", "s-3", base.Add(time.Hour)))).To(Succeed())
			Expect(driver.PutBridge(ctx, newBridge("b1", "s-2", "s-3", base))).To(Succeed())
			Expect(driver.PutBridge(ctx, newBridge("b3", "s-1", "s-9", base))).To(Succeed())

			bridges, err := driver.BridgesInto(ctx, "s-3")
			Expect(err).NotTo(HaveOccurred())
			Expect(bridges).To(HaveLen(2))
			Expect(bridges[0].ID).To(Equal("b1"))
			Expect(bridges[1].ID).To(Equal("b2"))
		})
	})

	It("counts rows in Stats", func() {
		Expect(driver.PutRecord(ctx, fullRecord("r1"))).To(Succeed())
		Expect(driver.PutSession(ctx, &record.SessionRecord{
			ID: "s-1", Kind: record.SourceChat, CreatedAt: time.Now().UTC(),
		})).To(Succeed())

		stats, err := driver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Records).To(Equal(1))
		Expect(stats.Sessions).To(Equal(1))
		Expect(stats.Bridges).To(Equal(0))
	})
})
