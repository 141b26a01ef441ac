package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uuid.UUID)
}

type WorkerOptions struct {
	Concurrency  int
	PollInterval time.Duration
	QueueSize    int
}

type worker struct {
	analysisRepo repositories.AnalysisRepository
	jobs         AnalysisJobService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	logger       *zap.Logger
}

func NewWorker(
	analysisRepo repositories.AnalysisRepository,
	jobs AnalysisJobService,
	opts WorkerOptions,
	logger *zap.Logger,
) Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	return &worker{
		analysisRepo: analysisRepo,
		jobs:         jobs,
		jobQueue:     make(chan uuid.UUID, opts.QueueSize),
		concurrency:  opts.Concurrency,
		pollInterval: opts.PollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("🚀 Starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.logger.Info("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("🛑 Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("✅ Worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(analysisID uuid.UUID) {
	select {
	case w.jobQueue <- analysisID:
		w.logger.Info("📥 Job enqueued", zap.String("analysis_id", analysisID.String()))
	case <-w.stopChan:
		w.logger.Warn("⚠️ Worker stopped, cannot enqueue job", zap.String("analysis_id", analysisID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			log.Debug("👷 Worker stopped")
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			log.Info("👷 Processing job", zap.String("analysis_id", id.String()))
			if err := w.jobs.ProcessAnalysis(ctx, id); err != nil {
				log.Warn("❌ Failed to process job", zap.String("analysis_id", id.String()), zap.Error(err))
			} else {
				log.Info("✅ Completed job", zap.String("analysis_id", id.String()))
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.analysisRepo.FindPendingJobs(ctx, 10)
			if err != nil {
				w.logger.Warn("⚠️ Failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.logger.Info("📋 Found pending jobs", zap.Int("count", len(pending)))
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
