// Package scraperunner implements the single-stage SCRAPE work item
// pipeline: enumerate listings from a source, dedup against the queue
// and store, and safe-spawn a JOB item per surviving URL.
package scraperunner

import (
	"context"
	"fmt"
	"time"

	"github.com/jobworker/engine/internal/dedup"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/health"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/queue"
	"github.com/jobworker/engine/internal/scrapers"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
)

type Deps struct {
	HTTPClient *scrapers.Client
	Queue      *queue.Manager
	Sources    *badgerstore.SourceStore
	WorkItems  *badgerstore.WorkItemStore
	JobMatches *badgerstore.JobMatchStore
	Dedup      *dedup.Cache
	Logger     arbor.ILogger
}

// Run is the SCRAPE stage's StageFunc.
func (d *Deps) Run(ctx context.Context, item *models.WorkItem) error {
	start := time.Now()

	src, err := d.Sources.Get(ctx, item.SourceRef)
	if err != nil {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("load source %s: %w", item.SourceRef, err))
	}

	scraper, err := scrapers.ForType(d.HTTPClient, src.Type, src.Selector)
	if err != nil {
		return errkind.Wrap(errkind.Permanent, err)
	}

	raw, err := scraper.Fetch(ctx, src.URL)
	if err != nil {
		d.recordOutcome(ctx, src, health.ScrapeOutcome{Success: false, At: time.Now()})
		return errkind.Wrap(errkind.Transient, fmt.Errorf("fetch source %s: %w", src.ID, err))
	}
	listings, err := scraper.ParseListings(ctx, raw)
	if err != nil {
		d.recordOutcome(ctx, src, health.ScrapeOutcome{Success: false, At: time.Now()})
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("parse source %s: %w", src.ID, err))
	}

	urls := make([]string, len(listings))
	byURL := make(map[string]storeapi.ScrapedListing, len(listings))
	for i, l := range listings {
		urls[i] = l.URL
		byURL[l.URL] = l
	}

	existing, err := d.Dedup.BatchExists(ctx, urls, d.checkExists)
	if err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("batch exists check: %w", err))
	}

	spawned := 0
	for _, l := range byURL {
		if existing[l.URL] {
			continue
		}

		_, err = d.Queue.Spawn(ctx, item, queue.NewItemData{
			Type: models.TypeJob,
			URL:  l.URL,
		})
		if err != nil {
			if _, ok := err.(*queue.SpawnRejectedError); ok {
				continue
			}
			d.Logger.Warn().Str("url", l.URL).Err(err).Msg("failed to spawn job item")
			continue
		}
		spawned++
	}

	duration := time.Since(start)
	d.recordOutcome(ctx, src, health.ScrapeOutcome{
		Success:    true,
		JobsFound:  spawned,
		DurationMS: float64(duration.Milliseconds()),
		At:         time.Now(),
	})

	item.Status = models.StatusSuccess
	item.ResultMessage = fmt.Sprintf("spawned %d new job items from %d listings", spawned, len(listings))
	return nil
}

func (d *Deps) checkExists(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	for _, u := range urls {
		queued, err := d.WorkItems.ExistsByURL(ctx, u, models.TypeJob)
		if err != nil {
			return nil, err
		}
		if queued {
			result[u] = true
			continue
		}
		hash, err := dedup.URLHash(u)
		if err != nil {
			result[u] = false
			continue
		}
		saved, err := d.JobMatches.ExistsByURLHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		result[u] = saved
	}
	return result, nil
}

func (d *Deps) recordOutcome(ctx context.Context, src *models.Source, outcome health.ScrapeOutcome) {
	err := d.Sources.UpdateHealth(ctx, src.ID, func(s *models.Source) error {
		health.Apply(&s.Health, outcome)
		return nil
	})
	if err != nil {
		d.Logger.Warn().Str("source_id", src.ID).Err(err).Msg("failed to record scrape outcome")
	}
}
