package queue

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/models"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := badgerstore.NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "queue.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := badgerstore.NewWorkItemStore(db, arbor.NewLogger())
	cfg := &common.QueueConfig{MaxRetries: 3}
	return NewManager(store, arbor.NewLogger(), cfg)
}

func TestSpawnRejectsWhenMaxDepthExceeded(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	parent, err := m.SubmitRoot(ctx, models.TypeScrape, "https://boards.example.com/co")
	require.NoError(t, err)
	parent.SpawnDepth = parent.MaxSpawnDepth

	_, err = m.Spawn(ctx, parent, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/1"})
	require.Error(t, err)
	var rejErr *SpawnRejectedError
	require.ErrorAs(t, err, &rejErr)
	require.Equal(t, ReasonDepthExceeded, rejErr.Reason)
}

func TestSpawnRejectsCycleBackToParentURL(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	parent, err := m.SubmitRoot(ctx, models.TypeCompany, "https://acme.example.com")
	require.NoError(t, err)

	_, err = m.Spawn(ctx, parent, NewItemData{Type: models.TypeCompany, URL: "https://acme.example.com"})
	require.Error(t, err)
	var rejErr *SpawnRejectedError
	require.ErrorAs(t, err, &rejErr)
	require.Equal(t, ReasonCycle, rejErr.Reason)
}

func TestSpawnRejectsWhenAlreadyQueuedInLineage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	parent, err := m.SubmitRoot(ctx, models.TypeScrape, "https://boards.example.com/co")
	require.NoError(t, err)

	child, err := m.Spawn(ctx, parent, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/1"})
	require.NoError(t, err)
	require.NotNil(t, child)

	sibling, err := m.Get(ctx, parent.ID)
	require.NoError(t, err)
	_, err = m.Spawn(ctx, sibling, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/1"})
	require.Error(t, err)
	var rejErr *SpawnRejectedError
	require.ErrorAs(t, err, &rejErr)
	require.Equal(t, ReasonAlreadyQueued, rejErr.Reason)
}

func TestSpawnRejectsWhenAlreadySucceededInLineage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	parent, err := m.SubmitRoot(ctx, models.TypeScrape, "https://boards.example.com/co")
	require.NoError(t, err)

	child, err := m.Spawn(ctx, parent, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/1"})
	require.NoError(t, err)

	err = m.Update(ctx, child.ID, func(item *models.WorkItem) error {
		item.Status = models.StatusSuccess
		return nil
	})
	require.NoError(t, err)

	_, err = m.Spawn(ctx, parent, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/1"})
	require.Error(t, err)
	var rejErr *SpawnRejectedError
	require.ErrorAs(t, err, &rejErr)
	require.Equal(t, ReasonAlreadyDone, rejErr.Reason)
}

func TestSpawnSucceedsAndInheritsLineage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	parent, err := m.SubmitRoot(ctx, models.TypeScrape, "https://boards.example.com/co")
	require.NoError(t, err)

	child, err := m.Spawn(ctx, parent, NewItemData{Type: models.TypeJob, URL: "https://example.com/jobs/2"})
	require.NoError(t, err)

	require.Equal(t, parent.TrackingID, child.TrackingID)
	require.Equal(t, parent.SpawnDepth+1, child.SpawnDepth)
	require.Contains(t, child.AncestryChain, parent.ID)
	require.Equal(t, models.StatusPending, child.Status)
}

func TestSubmitRootStartsFreshLineage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	item, err := m.SubmitRoot(ctx, models.TypeJob, "https://example.com/jobs/3")
	require.NoError(t, err)

	require.True(t, item.IsRoot())
	require.Equal(t, 0, item.SpawnDepth)
	require.Empty(t, item.AncestryChain)
}
