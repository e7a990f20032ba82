package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// WorkItemStore implements CRUD plus the conditional-claim operation over
// the work-queue collection. badgerhold has no native compare-and-swap, so
// claiming is a mutex-guarded read-check-write, the same tradeoff every
// store in this package accepts for anything it cannot express as a true
// indexed query.
type WorkItemStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex
}

func NewWorkItemStore(db *BadgerDB, logger arbor.ILogger) *WorkItemStore {
	return &WorkItemStore{db: db, logger: logger}
}

func (s *WorkItemStore) Create(ctx context.Context, item *models.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Store().Insert(item.ID, item)
}

func (s *WorkItemStore) Get(ctx context.Context, id string) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, storeapi.ErrNotFound
		}
		return nil, fmt.Errorf("get work item %s: %w", id, err)
	}
	return &item, nil
}

func (s *WorkItemStore) BatchGet(ctx context.Context, ids []string) ([]*models.WorkItem, error) {
	out := make([]*models.WorkItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			if err == storeapi.ErrNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Update loads the item, applies mutate, bumps UpdatedAt, and upserts it
// back. Callers must not assume isolation from concurrent claims on other
// items; it is the caller's job to only mutate items it has claimed.
func (s *WorkItemStore) Update(ctx context.Context, id string, mutate func(*models.WorkItem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var item models.WorkItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return storeapi.ErrNotFound
		}
		return fmt.Errorf("get work item %s: %w", id, err)
	}

	if err := mutate(&item); err != nil {
		return err
	}
	item.UpdatedAt = time.Now()

	return s.db.Store().Update(id, &item)
}

// ClaimNextPending atomically claims one PENDING item (or a PROCESSING one
// whose claim has gone stale) and returns it with status set to PROCESSING.
// Returns storeapi.ErrNotFound if nothing is claimable right now.
func (s *WorkItemStore) ClaimNextPending(ctx context.Context, staleAfter time.Duration) (*models.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	staleCutoff := now.Add(-staleAfter)

	var candidates []models.WorkItem
	if err := s.db.Store().Find(&candidates, badgerhold.Where("Status").Eq(models.StatusPending)); err != nil {
		return nil, fmt.Errorf("query pending items: %w", err)
	}

	var stale []models.WorkItem
	if err := s.db.Store().Find(&stale, badgerhold.Where("Status").Eq(models.StatusProcessing)); err != nil {
		return nil, fmt.Errorf("query processing items: %w", err)
	}
	for _, item := range stale {
		if item.ClaimedAt != nil && item.ClaimedAt.Before(staleCutoff) {
			candidates = append(candidates, item)
		}
	}

	if len(candidates) == 0 {
		return nil, storeapi.ErrNotFound
	}

	// Oldest created first, so root submissions don't starve behind a churn
	// of freshly spawned children.
	chosen := candidates[0]
	for _, c := range candidates[1:] {
		if c.CreatedAt.Before(chosen.CreatedAt) {
			chosen = c
		}
	}

	chosen.Status = models.StatusProcessing
	chosen.ClaimedAt = &now
	chosen.UpdatedAt = now

	if err := s.db.Store().Update(chosen.ID, &chosen); err != nil {
		return nil, fmt.Errorf("claim work item %s: %w", chosen.ID, err)
	}

	return &chosen, nil
}

// ReclaimAllProcessing resets every item this process left PROCESSING back
// to PENDING, used on graceful shutdown so another worker can resume them.
func (s *WorkItemStore) ReclaimAllProcessing(ctx context.Context, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var processing []models.WorkItem
	if err := s.db.Store().Find(&processing, badgerhold.Where("Status").Eq(models.StatusProcessing)); err != nil {
		return 0, err
	}

	count := 0
	for _, item := range processing {
		item.Status = models.StatusPending
		item.ClaimedAt = nil
		item.ResultMessage = reason
		item.UpdatedAt = time.Now()
		if err := s.db.Store().Update(item.ID, &item); err != nil {
			s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to reclaim processing item")
			continue
		}
		count++
	}
	return count, nil
}

// FindInLineage returns items sharing trackingID with the given url/type,
// used by the safe-spawn pending/success duplicate checks.
func (s *WorkItemStore) FindInLineage(ctx context.Context, trackingID, url string, itemType models.WorkItemType) ([]*models.WorkItem, error) {
	var found []models.WorkItem
	q := badgerhold.Where("TrackingID").Eq(trackingID).
		And("URL").Eq(url).
		And("Type").Eq(itemType)
	if err := s.db.Store().Find(&found, q); err != nil {
		return nil, fmt.Errorf("query lineage: %w", err)
	}
	out := make([]*models.WorkItem, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

// ExistsByURL reports whether any work item of itemType already targets
// url, regardless of lineage - the queue-side half of the dedup existence
// check.
func (s *WorkItemStore) ExistsByURL(ctx context.Context, url string, itemType models.WorkItemType) (bool, error) {
	n, err := s.db.Store().Count(&models.WorkItem{}, badgerhold.Where("URL").Eq(url).And("Type").Eq(itemType))
	if err != nil {
		return false, fmt.Errorf("count work items by url: %w", err)
	}
	return n > 0, nil
}

// CountRecentScrapesForCompany counts SCRAPE items for sources belonging to
// companyRef that completed within the given window, used by the rotation
// fairness tie-breaker. It intentionally derives the count from the
// work-queue collection rather than maintaining a second counter document.
func (s *WorkItemStore) CountRecentScrapesForCompany(ctx context.Context, sourceIDs []string, since time.Time) (int, error) {
	if len(sourceIDs) == 0 {
		return 0, nil
	}
	idSet := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		idSet[id] = true
	}

	var items []models.WorkItem
	q := badgerhold.Where("Type").Eq(models.TypeScrape)
	if err := s.db.Store().Find(&items, q); err != nil {
		return 0, fmt.Errorf("query recent scrapes: %w", err)
	}

	count := 0
	for _, item := range items {
		if idSet[item.SourceRef] && item.CompletedAt != nil && !item.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
