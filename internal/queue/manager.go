// Package queue implements the safe-spawning work item manager, the
// state-driven dispatcher, and the worker pool that polls and claims items.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/dedup"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/jobworker/engine/internal/storeapi"

	"github.com/jobworker/engine/internal/models"
	"github.com/ternarybob/arbor"
)

type SpawnRejectReason string

const (
	ReasonDepthExceeded  SpawnRejectReason = "DEPTH_EXCEEDED"
	ReasonCycle          SpawnRejectReason = "CYCLE"
	ReasonAlreadyQueued  SpawnRejectReason = "ALREADY_QUEUED"
	ReasonAlreadyDone    SpawnRejectReason = "ALREADY_DONE"
)

// SpawnRejectedError is returned by Spawn when a safe-spawn check fails;
// this is expected engine behavior, not a hard error - the parent stage
// is expected to log it and continue.
type SpawnRejectedError struct {
	Reason SpawnRejectReason
}

func (e *SpawnRejectedError) Error() string {
	return fmt.Sprintf("spawn rejected: %s", e.Reason)
}

// NewItemData is the minimal input a stage supplies when asking to spawn a
// child; lineage fields are always engine-computed, never caller-supplied.
type NewItemData struct {
	Type       models.WorkItemType
	URL        string
	SourceRef  string
	CompanyRef string
}

// Manager owns CRUD and the safe-spawn gate over the work-queue collection.
type Manager struct {
	store  *badgerstore.WorkItemStore
	logger arbor.ILogger
	cfg    *common.QueueConfig
}

func NewManager(store *badgerstore.WorkItemStore, logger arbor.ILogger, cfg *common.QueueConfig) *Manager {
	return &Manager{store: store, logger: logger, cfg: cfg}
}

// SubmitRoot inserts an externally submitted item with a fresh tracking_id,
// empty ancestry, and depth 0.
func (m *Manager) SubmitRoot(ctx context.Context, itemType models.WorkItemType, rawURL string) (*models.WorkItem, error) {
	normalized, err := dedup.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("normalize submitted url: %w", err)
	}

	now := time.Now()
	item := &models.WorkItem{
		ID:            common.NewID("wi"),
		Type:          itemType,
		URL:           normalized,
		Status:        models.StatusPending,
		MaxRetries:    m.cfg.MaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
		TrackingID:    common.NewTrackingID(),
		AncestryChain: []string{},
		SpawnDepth:    0,
		MaxSpawnDepth: 10,
	}

	if err := m.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create root work item: %w", err)
	}
	return item, nil
}

// SubmitScrapeRoot creates a root SCRAPE item for a rotation-selected
// source, the one caller that needs SourceRef set on a root submission
// rather than inherited through Spawn's lineage.
func (m *Manager) SubmitScrapeRoot(ctx context.Context, src *models.Source) (*models.WorkItem, error) {
	now := time.Now()
	item := &models.WorkItem{
		ID:            common.NewID("wi"),
		Type:          models.TypeScrape,
		URL:           src.URL,
		SourceRef:     src.ID,
		Status:        models.StatusPending,
		MaxRetries:    m.cfg.MaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
		TrackingID:    common.NewTrackingID(),
		AncestryChain: []string{},
		SpawnDepth:    0,
		MaxSpawnDepth: 10,
	}

	if err := m.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create scrape root work item: %w", err)
	}
	return item, nil
}

// CanSpawn runs the four safe-spawn checks (depth, cycle, pending
// duplicate, success duplicate) and returns the reject reason (empty if
// approved).
func (m *Manager) CanSpawn(ctx context.Context, parent *models.WorkItem, data NewItemData) (SpawnRejectReason, error) {
	if parent.SpawnDepth+1 > parent.MaxSpawnDepth {
		return ReasonDepthExceeded, nil
	}

	normalized, err := dedup.NormalizeURL(data.URL)
	if err != nil {
		return "", fmt.Errorf("normalize target url: %w", err)
	}

	ancestorIDs := append(append([]string{}, parent.AncestryChain...), parent.ID)
	ancestors, err := m.store.BatchGet(ctx, ancestorIDs)
	if err != nil {
		return "", fmt.Errorf("load ancestry: %w", err)
	}
	for _, a := range ancestors {
		if a.Type == data.Type && a.URL == normalized {
			return ReasonCycle, nil
		}
	}
	// The parent itself may not be in ancestorIDs' batch result order; also
	// check the parent directly in case it was the originating request.
	if parent.Type == data.Type && parent.URL == normalized {
		return ReasonCycle, nil
	}

	lineageMatches, err := m.store.FindInLineage(ctx, parent.TrackingID, normalized, data.Type)
	if err != nil {
		return "", fmt.Errorf("query lineage duplicates: %w", err)
	}
	for _, existing := range lineageMatches {
		switch existing.Status {
		case models.StatusPending, models.StatusProcessing:
			return ReasonAlreadyQueued, nil
		case models.StatusSuccess:
			return ReasonAlreadyDone, nil
		}
	}

	return "", nil
}

// Spawn creates the child item if CanSpawn approves, else returns
// *SpawnRejectedError.
func (m *Manager) Spawn(ctx context.Context, parent *models.WorkItem, data NewItemData) (*models.WorkItem, error) {
	reason, err := m.CanSpawn(ctx, parent, data)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return nil, &SpawnRejectedError{Reason: reason}
	}

	normalized, err := dedup.NormalizeURL(data.URL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	child := &models.WorkItem{
		ID:            common.NewID("wi"),
		Type:          data.Type,
		URL:           normalized,
		Status:        models.StatusPending,
		MaxRetries:    m.cfg.MaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
		TrackingID:    parent.TrackingID,
		AncestryChain: append(append([]string{}, parent.AncestryChain...), parent.ID),
		SpawnDepth:    parent.SpawnDepth + 1,
		MaxSpawnDepth: parent.MaxSpawnDepth,
		SourceRef:     data.SourceRef,
		CompanyRef:    data.CompanyRef,
	}

	if err := m.store.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("create spawned work item: %w", err)
	}
	return child, nil
}

// Get, Update and ClaimNext delegate straight to the store; kept on Manager
// so pipeline code depends on one seam instead of reaching into storage
// directly.
func (m *Manager) Get(ctx context.Context, id string) (*models.WorkItem, error) {
	return m.store.Get(ctx, id)
}

func (m *Manager) Update(ctx context.Context, id string, mutate func(*models.WorkItem) error) error {
	return m.store.Update(ctx, id, mutate)
}

func (m *Manager) ClaimNext(ctx context.Context) (*models.WorkItem, error) {
	item, err := m.store.ClaimNextPending(ctx, time.Duration(m.cfg.StaleClaimSeconds)*time.Second)
	if err == storeapi.ErrNotFound {
		return nil, nil
	}
	return item, err
}

func (m *Manager) ReclaimAllProcessing(ctx context.Context, reason string) (int, error) {
	return m.store.ReclaimAllProcessing(ctx, reason)
}
