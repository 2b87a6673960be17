// Package worker provides an asynchronous worker pool for capturing context
// off the request hot path. Jobs carry raw text plus indicators; workers run
// extraction, which persists each produced record through the tiered store,
// and then emit capture events.
//
// The pool decouples extraction and storage from API callers so a slow tier
// never blocks the HTTP surface.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/eventstream"
	"github.com/amberhq/amber/pkg/extract"
	"github.com/amberhq/amber/pkg/record"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Text       string
	Indicators []string
	Source     record.SourceInfo
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Extractor runs the capture. Its storer persists produced records.
	Extractor *extract.Extractor

	// Publisher is the optional eventstream publisher for capture events.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes capture jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("capture job queued",
			zap.Int("indicators", len(job.Indicators)),
			zap.String("source_session", job.Source.SessionID),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.Int("indicators", len(job.Indicators)),
			zap.String("source_session", job.Source.SessionID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("capture worker stopped", zap.Uint("worker_id", id))
}

// processJob runs extraction for a job and publishes one capture event per
// produced record. Event failures are logged, never propagated.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	records, err := p.config.Extractor.Extract(ctx, job.Text, job.Indicators, job.Source)
	if err != nil {
		p.logger.Error("async context capture failed",
			zap.String("source_session", job.Source.SessionID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("context captured",
		zap.Int("records", len(records)),
		zap.String("source_session", job.Source.SessionID),
	)

	if p.config.Publisher == nil {
		return
	}

	for _, rec := range records {
		event := eventstream.NewContextCapturedEvent(rec)
		if err := p.config.Publisher.PublishContext(ctx, event); err != nil {
			p.logger.Warn("failed to publish capture event",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
		}
	}
}
