package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestWorkItemStore(t *testing.T) *WorkItemStore {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "work_items.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWorkItemStore(db, arbor.NewLogger())
}

func sampleItem(id string, status models.WorkItemStatus, createdAt time.Time) *models.WorkItem {
	return &models.WorkItem{
		ID:         id,
		Type:       models.TypeJob,
		URL:        "https://example.com/jobs/" + id,
		Status:     status,
		TrackingID: "track-" + id,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	item := sampleItem("wi-1", models.StatusPending, time.Now())
	require.NoError(t, s.Create(ctx, item))

	got, err := s.Get(ctx, "wi-1")
	require.NoError(t, err)
	assert.Equal(t, item.URL, got.URL)
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := newTestWorkItemStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storeapi.ErrNotFound)
}

func TestClaimNextPendingPrefersOldestCreated(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	older := sampleItem("wi-old", models.StatusPending, time.Now().Add(-time.Hour))
	newer := sampleItem("wi-new", models.StatusPending, time.Now())
	require.NoError(t, s.Create(ctx, newer))
	require.NoError(t, s.Create(ctx, older))

	claimed, err := s.ClaimNextPending(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "wi-old", claimed.ID)
	assert.Equal(t, models.StatusProcessing, claimed.Status)
	assert.NotNil(t, claimed.ClaimedAt)
}

func TestClaimNextPendingReclaimsStaleProcessingItem(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	staleClaim := time.Now().Add(-time.Hour)
	item := sampleItem("wi-stale", models.StatusProcessing, time.Now().Add(-2*time.Hour))
	item.ClaimedAt = &staleClaim
	require.NoError(t, s.Create(ctx, item))

	claimed, err := s.ClaimNextPending(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "wi-stale", claimed.ID)
}

func TestClaimNextPendingReturnsNotFoundWhenQueueEmpty(t *testing.T) {
	s := newTestWorkItemStore(t)
	_, err := s.ClaimNextPending(context.Background(), time.Minute)
	assert.ErrorIs(t, err, storeapi.ErrNotFound)
}

func TestReclaimAllProcessingResetsToPending(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	claimedAt := time.Now()
	item := sampleItem("wi-inflight", models.StatusProcessing, time.Now())
	item.ClaimedAt = &claimedAt
	require.NoError(t, s.Create(ctx, item))

	n, err := s.ReclaimAllProcessing(ctx, "shutdown")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "wi-inflight")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ClaimedAt)
	assert.Equal(t, "shutdown", got.ResultMessage)
}

func TestFindInLineageMatchesByTrackingURLAndType(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	item := sampleItem("wi-a", models.StatusSuccess, time.Now())
	item.TrackingID = "shared-track"
	item.URL = "https://example.com/jobs/shared"
	require.NoError(t, s.Create(ctx, item))

	other := sampleItem("wi-b", models.StatusSuccess, time.Now())
	other.TrackingID = "different-track"
	other.URL = "https://example.com/jobs/shared"
	require.NoError(t, s.Create(ctx, other))

	matches, err := s.FindInLineage(ctx, "shared-track", "https://example.com/jobs/shared", models.TypeJob)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "wi-a", matches[0].ID)
}

func TestExistsByURLChecksTypeToo(t *testing.T) {
	s := newTestWorkItemStore(t)
	ctx := context.Background()

	item := sampleItem("wi-exists", models.StatusPending, time.Now())
	item.URL = "https://example.com/jobs/dup"
	require.NoError(t, s.Create(ctx, item))

	exists, err := s.ExistsByURL(ctx, "https://example.com/jobs/dup", models.TypeJob)
	require.NoError(t, err)
	assert.True(t, exists)

	existsOtherType, err := s.ExistsByURL(ctx, "https://example.com/jobs/dup", models.TypeCompany)
	require.NoError(t, err)
	assert.False(t, existsOtherType)
}
