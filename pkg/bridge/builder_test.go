package bridge_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/bridge"
	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/tiered"
	testutils "github.com/amberhq/amber/pkg/utils/test"
)

func newRecord(id, sessionID string) *record.ContextRecord {
	return &record.ContextRecord{
		ID:          id,
		PatternType: "memory",
		MatchText:   "remember " + id,
		FullContext: "Context for " + id + ".",
		Source:      record.SourceInfo{SessionID: sessionID},
		ExtractedAt: time.Now().UTC(),
	}
}

var _ = Describe("bridge builder", func() {
	var (
		ctx     context.Context
		storer  *testutils.MockStorageDriver
		store   *tiered.Store
		builder *bridge.Builder
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = testutils.NewMockStorageDriver()

		var err error
		store, err = tiered.NewStore(&tiered.Config{
			Storage: storer,
			Logger:  zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		builder = bridge.NewBuilder(store, nil, zap.NewNop())
	})

	It("carries a session's direct context records", func() {
		for _, id := range []string{"r1", "r2", "r3"} {
			storer.Records[id] = newRecord(id, "s-1")
		}

		bridgeRec, err := builder.Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.FromSessionID).To(Equal("s-1"))
		Expect(bridgeRec.ToSessionID).To(Equal("s-2"))
		Expect(bridgeRec.ContextIDs).To(ConsistOf("r1", "r2", "r3"))

		Expect(storer.Bridges).To(HaveKey(bridgeRec.ID))
	})

	It("writes the bridge through the cache tier as well as the durable store", func() {
		cacher := testutils.NewMockCacheDriver()

		cachedStore, err := tiered.NewStore(&tiered.Config{
			Cache:   cacher,
			Storage: storer,
			Logger:  zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		storer.Records["r1"] = newRecord("r1", "s-1")

		bridgeRec, err := bridge.NewBuilder(cachedStore, nil, zap.NewNop()).Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())

		Expect(storer.Bridges).To(HaveKey(bridgeRec.ID))
		Expect(cacher.Bridges).To(HaveKey(bridgeRec.ID))
		Expect(cacher.Bridges[bridgeRec.ID].ContextIDs).To(ConsistOf("r1"))
	})

	It("carries bridged-in ids one hop forward, de-duplicated", func() {
		for _, id := range []string{"r1", "r2", "r3"} {
			storer.Records[id] = newRecord(id, "s-1")
		}
		// r3 arrived over an earlier bridge too; r4 and r5 only over it.
		storer.Records["r4"] = newRecord("r4", "s-0")
		storer.Records["r5"] = newRecord("r5", "s-0")
		storer.Bridges["b0"] = &record.BridgeRecord{
			ID:            "b0",
			FromSessionID: "s-0",
			ToSessionID:   "s-1",
			ContextIDs:    []string{"r3", "r4", "r5"},
			CreatedAt:     time.Now().UTC(),
		}

		bridgeRec, err := builder.Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.ContextIDs).To(ConsistOf("r1", "r2", "r3", "r4", "r5"))
	})

	It("includes the session's full message history", func() {
		base := time.Now().UTC()
		storer.Messages["s-1"] = []record.Message{
			{ID: "m1", SessionID: "s-1", Role: "user", Content: "hello", CreatedAt: base},
			{ID: "m2", SessionID: "s-1", Role: "assistant", Content: "hi", CreatedAt: base.Add(time.Second)},
		}

		bridgeRec, err := builder.Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.Messages).To(HaveLen(2))
		Expect(bridgeRec.Summary).To(ContainSubstring("2 messages"))
		Expect(bridgeRec.Summary).To(ContainSubstring("hello"))
	})

	It("keeps unresolvable ids in the carried set but out of the summary", func() {
		storer.Records["r1"] = newRecord("r1", "s-1")
		storer.Bridges["b0"] = &record.BridgeRecord{
			ID:            "b0",
			FromSessionID: "s-0",
			ToSessionID:   "s-1",
			ContextIDs:    []string{"ghost"},
			CreatedAt:     time.Now().UTC(),
		}

		bridgeRec, err := builder.Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.ContextIDs).To(ConsistOf("r1", "ghost"))
		Expect(bridgeRec.Summary).To(ContainSubstring("1 context record"))
	})

	It("builds an empty bridge for a session with no context", func() {
		bridgeRec, err := builder.Bridge(ctx, "s-empty", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.ContextIDs).To(BeEmpty())
		Expect(bridgeRec.Messages).To(BeEmpty())
		Expect(bridgeRec.Summary).To(BeEmpty())

		Expect(storer.Bridges).To(HaveKey(bridgeRec.ID))
	})

	It("lists carried records by pattern type in the summary", func() {
		storer.Records["r1"] = newRecord("r1", "s-1")

		bridgeRec, err := builder.Bridge(ctx, "s-1", "s-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(bridgeRec.Summary).To(ContainSubstring("[memory]"))
		Expect(bridgeRec.Summary).To(ContainSubstring("remember r1"))
	})
})
