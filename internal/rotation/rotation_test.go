package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noScrapeCounter(ctx context.Context, ids []string, since time.Time) (int, error) {
	return 0, nil
}

func flatTier(companyRef string) models.Tier {
	return models.TierB
}

func TestRankOrdersByHealthScoreDescending(t *testing.T) {
	sources := []*models.Source{
		{ID: "low", CompanyRef: "c1", Health: models.SourceHealth{HealthScore: 0.2}},
		{ID: "high", CompanyRef: "c2", Health: models.SourceHealth{HealthScore: 0.9}},
	}

	ranked, err := Rank(context.Background(), sources, 10, 5, 30, noScrapeCounter, flatTier)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].ID)
}

func TestRankExcludesSourcesOverFailureLimit(t *testing.T) {
	sources := []*models.Source{
		{ID: "healthy", CompanyRef: "c1", Health: models.SourceHealth{HealthScore: 0.5, ConsecutiveFailures: 0}},
		{ID: "broken", CompanyRef: "c2", Health: models.SourceHealth{HealthScore: 0.9, ConsecutiveFailures: 5}},
	}

	ranked, err := Rank(context.Background(), sources, 10, 5, 30, noScrapeCounter, flatTier)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "healthy", ranked[0].ID)
}

func TestRankBreaksHealthTieByTier(t *testing.T) {
	sources := []*models.Source{
		{ID: "tier-b", CompanyRef: "b-co", Health: models.SourceHealth{HealthScore: 0.5}},
		{ID: "tier-s", CompanyRef: "s-co", Health: models.SourceHealth{HealthScore: 0.5}},
	}
	tierOf := func(companyRef string) models.Tier {
		if companyRef == "s-co" {
			return models.TierS
		}
		return models.TierB
	}

	ranked, err := Rank(context.Background(), sources, 10, 5, 30, noScrapeCounter, tierOf)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "tier-s", ranked[0].ID)
}

func TestRankPrefersNeverScrapedSourceOnFurtherTie(t *testing.T) {
	scraped := time.Now().Add(-time.Hour)
	sources := []*models.Source{
		{ID: "scraped", CompanyRef: "c1", Health: models.SourceHealth{HealthScore: 0.5, LastScrapedAt: &scraped}},
		{ID: "never", CompanyRef: "c2", Health: models.SourceHealth{HealthScore: 0.5}},
	}

	ranked, err := Rank(context.Background(), sources, 10, 5, 30, noScrapeCounter, flatTier)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "never", ranked[0].ID)
}

func TestRankTruncatesToRequestedCount(t *testing.T) {
	sources := []*models.Source{
		{ID: "a", CompanyRef: "c1", Health: models.SourceHealth{HealthScore: 0.9}},
		{ID: "b", CompanyRef: "c2", Health: models.SourceHealth{HealthScore: 0.8}},
		{ID: "c", CompanyRef: "c3", Health: models.SourceHealth{HealthScore: 0.7}},
	}

	ranked, err := Rank(context.Background(), sources, 2, 5, 30, noScrapeCounter, flatTier)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestRankBreaksFinalTieByFairnessCount(t *testing.T) {
	sources := []*models.Source{
		{ID: "scraped-often", CompanyRef: "busy", Health: models.SourceHealth{HealthScore: 0.5}},
		{ID: "scraped-rarely", CompanyRef: "quiet", Health: models.SourceHealth{HealthScore: 0.5}},
	}
	counter := func(ctx context.Context, ids []string, since time.Time) (int, error) {
		for _, id := range ids {
			if id == "scraped-often" {
				return 10, nil
			}
		}
		return 0, nil
	}

	ranked, err := Rank(context.Background(), sources, 10, 5, 30, counter, flatTier)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "scraped-rarely", ranked[0].ID)
}
