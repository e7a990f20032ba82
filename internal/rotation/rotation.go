// Package rotation ranks enabled sources for the next scrape cycle:
// health score, tier, recency, then per-company fairness.
package rotation

import (
	"context"
	"sort"
	"time"

	"github.com/jobworker/engine/internal/models"
)

// ScrapeCounter reports the rolling per-company scrape count used as the
// fairness tie-breaker; backed by WorkItemStore.CountRecentScrapesForCompany
// in the running system.
type ScrapeCounter func(ctx context.Context, sourceIDs []string, since time.Time) (int, error)

// TierLookup resolves a source's owning company's priority tier, since tier
// lives on Company, not Source.
type TierLookup func(companyRef string) models.Tier

// Rank orders sources by the four-key sort and returns the first N whose
// consecutive failures are below maxConsecutiveFailures. byCompany groups
// sourceIDs by CompanyRef so the fairness counter can be computed once per
// company rather than once per source.
func Rank(ctx context.Context, sources []*models.Source, n int, maxConsecutiveFailures, fairnessWindowDays int, counter ScrapeCounter, tierOf TierLookup) ([]*models.Source, error) {
	eligible := make([]*models.Source, 0, len(sources))
	for _, s := range sources {
		if s.Health.ConsecutiveFailures < maxConsecutiveFailures {
			eligible = append(eligible, s)
		}
	}

	byCompany := make(map[string][]string)
	for _, s := range eligible {
		byCompany[s.CompanyRef] = append(byCompany[s.CompanyRef], s.ID)
	}

	since := time.Now().AddDate(0, 0, -fairnessWindowDays)
	companyScrapeCount := make(map[string]int, len(byCompany))
	for company, ids := range byCompany {
		count, err := counter(ctx, ids, since)
		if err != nil {
			return nil, err
		}
		companyScrapeCount[company] = count
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]

		if a.Health.HealthScore != b.Health.HealthScore {
			return a.Health.HealthScore > b.Health.HealthScore
		}

		ta, tb := models.TierRank(tierOf(a.CompanyRef)), models.TierRank(tierOf(b.CompanyRef))
		if ta != tb {
			return ta < tb
		}

		aScraped, bScraped := lastScrapedOrZero(a), lastScrapedOrZero(b)
		if !aScraped.Equal(bScraped) {
			return aScraped.Before(bScraped)
		}

		return companyScrapeCount[a.CompanyRef] < companyScrapeCount[b.CompanyRef]
	})

	if n > len(eligible) {
		n = len(eligible)
	}
	return eligible[:n], nil
}

func lastScrapedOrZero(s *models.Source) time.Time {
	if s.Health.LastScrapedAt == nil {
		return time.Time{}
	}
	return *s.Health.LastScrapedAt
}
