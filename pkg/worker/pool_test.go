package worker_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/extract"
	"github.com/amberhq/amber/pkg/record"
	testutils "github.com/amberhq/amber/pkg/utils/test"
	"github.com/amberhq/amber/pkg/worker"
)

// syncStorer collects stored records behind a mutex, optionally gating
// each Store on a release channel.
type syncStorer struct {
	mu      sync.Mutex
	stored  []*record.ContextRecord
	started chan struct{}
	release chan struct{}
}

func (s *syncStorer) Store(_ context.Context, rec *record.ContextRecord) error {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, rec)

	return nil
}

func (s *syncStorer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

var _ = Describe("worker pool", func() {
	newExtractor := func(storer extract.Storer) *extract.Extractor {
		return extract.NewExtractor(extract.Config{}, storer, zap.NewNop())
	}

	It("requires an extractor", func() {
		_, err := worker.NewPool(&worker.Config{Logger: zap.NewNop()})
		Expect(err).To(HaveOccurred())
	})

	It("processes queued jobs and drains on close", func() {
		storer := &syncStorer{}
		pool, err := worker.NewPool(&worker.Config{
			Extractor: newExtractor(storer),
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			ok := pool.Enqueue(worker.Job{
				Text:       "We decided to capture this.",
				Indicators: []string{"decided to"},
				Source:     record.SourceInfo{SessionID: "s-1"},
			})
			Expect(ok).To(BeTrue())
		}

		pool.Close()

		Expect(storer.count()).To(Equal(5))
	})

	It("publishes one capture event per produced record", func() {
		storer := &syncStorer{}
		publisher := testutils.NewMockPublisher()

		pool, err := worker.NewPool(&worker.Config{
			Extractor: newExtractor(storer),
			Publisher: publisher,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ok := pool.Enqueue(worker.Job{
			Text:       "The cat sat.\n\nThe cat ran.",
			Indicators: []string{"The cat"},
			Source:     record.SourceInfo{SessionID: "s-1"},
		})
		Expect(ok).To(BeTrue())

		pool.Close()

		Expect(publisher.ContextCount()).To(Equal(2))
		Expect(publisher.ContextEvents[0].SourceSession).To(Equal("s-1"))
	})

	It("keeps processing when publishing fails", func() {
		storer := &syncStorer{}
		publisher := testutils.NewMockPublisher()
		publisher.FailPublish = true

		pool, err := worker.NewPool(&worker.Config{
			Extractor: newExtractor(storer),
			Publisher: publisher,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(worker.Job{
			Text:       "We decided to capture this.",
			Indicators: []string{"decided to"},
		})).To(BeTrue())

		pool.Close()

		Expect(storer.count()).To(Equal(1))
	})

	It("drops jobs when the queue is full", func() {
		storer := &syncStorer{
			started: make(chan struct{}, 8),
			release: make(chan struct{}),
		}

		pool, err := worker.NewPool(&worker.Config{
			Extractor:  newExtractor(storer),
			NumWorkers: 1,
			QueueSize:  1,
			Logger:     zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		job := worker.Job{
			Text:       "We decided to capture this.",
			Indicators: []string{"decided to"},
		}

		// First job occupies the single worker.
		Expect(pool.Enqueue(job)).To(BeTrue())
		Eventually(storer.started).Should(Receive())

		// Second job fills the one-slot queue; third has nowhere to go.
		Expect(pool.Enqueue(job)).To(BeTrue())
		Expect(pool.Enqueue(job)).To(BeFalse())

		close(storer.release)
		pool.Close()

		Expect(storer.count()).To(Equal(2))
	})
})
