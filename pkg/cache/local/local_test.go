package local

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amberhq/amber/pkg/cache"
	"github.com/amberhq/amber/pkg/record"
)

var _ = Describe("local cache driver", func() {
	var (
		driver *Driver
		ctx    context.Context
		clock  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		driver = NewDriver()
		driver.now = func() time.Time { return clock }
	})

	newRecord := func(id string) *record.ContextRecord {
		return &record.ContextRecord{
			ID:          id,
			PatternType: "reference",
			FullContext: "some context",
		}
	}

	It("round-trips a record", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())

		got, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("r1"))
	})

	It("misses on unknown ids", func() {
		_, err := driver.Get(ctx, "nope")
		Expect(err).To(MatchError(cache.ErrNotFound))
	})

	It("expires entries after their TTL", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())

		clock = clock.Add(2 * time.Hour)

		_, err := driver.Get(ctx, "r1")
		Expect(err).To(MatchError(cache.ErrNotFound))
		Expect(driver.Len()).To(Equal(0))
	})

	It("refreshes the TTL on re-set", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())

		clock = clock.Add(30 * time.Minute)
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())

		clock = clock.Add(45 * time.Minute)

		_, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
	})

	It("applies the default TTL when none is given", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), 0)).To(Succeed())

		clock = clock.Add(cache.DefaultTTL - time.Minute)
		_, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())

		clock = clock.Add(2 * time.Minute)
		_, err = driver.Get(ctx, "r1")
		Expect(err).To(MatchError(cache.ErrNotFound))
	})

	It("returns copies so callers cannot mutate cached state", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())

		first, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
		first.FullContext = "mutated"

		second, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.FullContext).To(Equal("some context"))
	})

	It("copies annotation slices so their backing arrays are not shared", func() {
		rec := newRecord("r1")
		rec.DomainTags = []string{"technical"}
		rec.Speakers = []record.SpeakerSegment{{Speaker: "ana", Text: "quoted"}}
		Expect(driver.Set(ctx, "r1", rec, time.Hour)).To(Succeed())

		// Mutating the caller's record after Set must not leak in.
		rec.DomainTags[0] = "corrupted"

		first, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.DomainTags).To(Equal([]string{"technical"}))

		// Mutating a returned record's slices must not leak back.
		first.DomainTags[0] = "corrupted"
		first.Speakers[0].Speaker = "mallory"

		second, err := driver.Get(ctx, "r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.DomainTags).To(Equal([]string{"technical"}))
		Expect(second.Speakers[0].Speaker).To(Equal("ana"))
	})

	It("round-trips a bridge in its own keyspace", func() {
		bridge := record.NewBridgeRecord("s-1", "s-2")
		bridge.ContextIDs = []string{"r1", "r2"}

		Expect(driver.SetBridge(ctx, bridge.ID, bridge, time.Hour)).To(Succeed())

		got, err := driver.GetBridge(ctx, bridge.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ContextIDs).To(Equal([]string{"r1", "r2"}))

		// A record under the same id does not collide.
		_, err = driver.Get(ctx, bridge.ID)
		Expect(err).To(MatchError(cache.ErrNotFound))
	})

	It("expires bridges after their TTL", func() {
		bridge := record.NewBridgeRecord("s-1", "s-2")
		Expect(driver.SetBridge(ctx, bridge.ID, bridge, time.Hour)).To(Succeed())

		clock = clock.Add(2 * time.Hour)

		_, err := driver.GetBridge(ctx, bridge.ID)
		Expect(err).To(MatchError(cache.ErrNotFound))
		Expect(driver.Len()).To(Equal(0))
	})

	It("returns bridge copies so callers cannot mutate cached state", func() {
		bridge := record.NewBridgeRecord("s-1", "s-2")
		bridge.ContextIDs = []string{"r1"}
		Expect(driver.SetBridge(ctx, bridge.ID, bridge, time.Hour)).To(Succeed())

		first, err := driver.GetBridge(ctx, bridge.ID)
		Expect(err).NotTo(HaveOccurred())
		first.ContextIDs[0] = "corrupted"

		second, err := driver.GetBridge(ctx, bridge.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.ContextIDs).To(Equal([]string{"r1"}))
	})

	It("deletes entries", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())
		Expect(driver.Delete(ctx, "r1")).To(Succeed())

		_, err := driver.Get(ctx, "r1")
		Expect(err).To(MatchError(cache.ErrNotFound))
	})

	It("sweeps expired entries on write", func() {
		Expect(driver.Set(ctx, "old", newRecord("old"), time.Minute)).To(Succeed())

		clock = clock.Add(time.Hour)

		// Enough writes to cross the sweep threshold.
		for i := 0; i < sweepEvery; i++ {
			Expect(driver.Set(ctx, "fresh", newRecord("fresh"), time.Hour)).To(Succeed())
		}

		Expect(driver.Len()).To(Equal(1))
	})

	It("drops everything on close", func() {
		Expect(driver.Set(ctx, "r1", newRecord("r1"), time.Hour)).To(Succeed())
		Expect(driver.Close()).To(Succeed())
		Expect(driver.Len()).To(Equal(0))
	})
})
