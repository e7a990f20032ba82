package queue

import (
	"context"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/ternarybob/arbor"
)

// stageTimeout returns the configured per-type timeout.
func stageTimeout(cfg *common.QueueConfig, itemType models.WorkItemType) time.Duration {
	switch itemType {
	case models.TypeJob:
		return cfg.Timeouts.Job
	case models.TypeScrape:
		return cfg.Timeouts.Scrape
	case models.TypeCompany:
		return cfg.Timeouts.Company
	default:
		return cfg.Timeouts.Job
	}
}

// WorkerPool runs a fixed number of concurrent loops claiming and
// processing work items: a ticker-poll loop per goroutine with staggered
// starts and a graceful shutdown that returns in-flight items to PENDING.
type WorkerPool struct {
	manager    *Manager
	dispatcher *Dispatcher
	cfg        *common.QueueConfig
	logger     arbor.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorkerPool(manager *Manager, dispatcher *Dispatcher, cfg *common.QueueConfig, logger arbor.ILogger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		manager: manager, dispatcher: dispatcher, cfg: cfg, logger: logger,
		ctx: ctx, cancel: cancel, done: make(chan struct{}),
	}
}

// Start launches workerCount goroutines and returns immediately.
func (p *WorkerPool) Start(workerCount int) {
	p.logger.Info().Int("workers", workerCount).Msg("starting worker pool")
	for i := 0; i < workerCount; i++ {
		go p.worker(i, workerCount)
	}
}

// Stop cancels all workers and reclaims any item they left PROCESSING so
// another process can resume it after restart.
func (p *WorkerPool) Stop() {
	p.logger.Info().Msg("stopping worker pool")
	p.cancel()
	time.Sleep(500 * time.Millisecond)

	count, err := p.manager.ReclaimAllProcessing(context.Background(), "worker pool shutdown")
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to reclaim in-flight items during shutdown")
	} else if count > 0 {
		p.logger.Info().Int("count", count).Msg("reclaimed in-flight items for resume")
	}
}

func (p *WorkerPool) worker(id, total int) {
	stagger := (p.cfg.PollInterval / time.Duration(total)) * time.Duration(id)
	if stagger > 0 {
		select {
		case <-time.After(stagger):
		case <-p.ctx.Done():
			return
		}
	}

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug().Int("worker_id", id).Msg("worker stopped")
			return
		case <-ticker.C:
			p.tick(id)
		}
	}
}

func (p *WorkerPool) tick(workerID int) {
	item, err := p.manager.ClaimNext(p.ctx)
	if err != nil {
		p.logger.Warn().Err(err).Int("worker_id", workerID).Msg("failed to claim work item")
		return
	}
	if item == nil {
		return
	}

	timeout := stageTimeout(p.cfg, item.Type)
	stageCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stageName, stageErr := p.dispatcher.Dispatch(stageCtx, item)

	if stageCtx.Err() == context.DeadlineExceeded && stageErr == nil {
		stageErr = context.DeadlineExceeded
	}

	p.finish(item, stageName, stageErr, workerID)
}

// finish persists the outcome of one dispatch: success/terminal states are
// saved as-is, transient errors retry up to MaxRetries, and exhaustion maps
// to FAILED.
func (p *WorkerPool) finish(item *models.WorkItem, stageName string, stageErr error, workerID int) {
	now := time.Now()

	if stageErr != nil {
		item.Error = stageErr.Error()
		kind := errkind.KindOf(stageErr)

		if kind == errkind.Permanent || kind == errkind.InvariantViolation {
			item.Status = models.StatusFailed
			item.CompletedAt = &now
			p.logger.Error().Str("item_id", item.ID).Str("stage", stageName).
				Str("kind", string(kind)).Err(stageErr).Msg("stage failed permanently")
		} else {
			if item.RetryCount < item.MaxRetries {
				item.RetryCount++
				item.Status = models.StatusPending
				item.ClaimedAt = nil
				p.logger.Warn().Str("item_id", item.ID).Str("stage", stageName).
					Int("retry_count", item.RetryCount).Err(stageErr).Msg("stage failed, retrying")
			} else {
				item.Status = models.StatusFailed
				item.CompletedAt = &now
				p.logger.Error().Str("item_id", item.ID).Str("stage", stageName).
					Err(stageErr).Msg("stage failed, retries exhausted")
			}
		}
	} else if item.Status.IsTerminal() {
		item.CompletedAt = &now
		p.logger.Info().Str("item_id", item.ID).Str("stage", stageName).
			Str("status", string(item.Status)).Msg("item reached terminal status")
	} else {
		p.logger.Debug().Str("item_id", item.ID).Str("stage", stageName).Msg("stage completed, item remains PENDING for next stage")
		item.Status = models.StatusPending
		item.ClaimedAt = nil
	}

	if err := p.manager.Update(p.ctx, item.ID, func(stored *models.WorkItem) error {
		*stored = *item
		return nil
	}); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Int("worker_id", workerID).Msg("failed to persist item after stage")
	}
}
