package health

import (
	"testing"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestApplySuccessResetsConsecutiveFailures(t *testing.T) {
	h := &models.SourceHealth{ConsecutiveFailures: 3, FailureCount: 3}
	Apply(h, ScrapeOutcome{Success: true, JobsFound: 5, DurationMS: 200, At: time.Now()})

	assert.Equal(t, 0, h.ConsecutiveFailures)
	assert.Equal(t, 1, h.SuccessCount)
}

func TestApplyFailureIncrementsConsecutiveFailures(t *testing.T) {
	h := &models.SourceHealth{}
	Apply(h, ScrapeOutcome{Success: false, At: time.Now()})
	Apply(h, ScrapeOutcome{Success: false, At: time.Now()})

	assert.Equal(t, 2, h.ConsecutiveFailures)
	assert.Equal(t, 2, h.FailureCount)
}

func TestApplyHealthScoreDegradesWithRepeatedFailure(t *testing.T) {
	h := &models.SourceHealth{}
	Apply(h, ScrapeOutcome{Success: true, JobsFound: 10, At: time.Now()})
	afterSuccess := h.HealthScore

	for i := 0; i < 6; i++ {
		Apply(h, ScrapeOutcome{Success: false, At: time.Now()})
	}

	assert.Less(t, h.HealthScore, afterSuccess)
	assert.GreaterOrEqual(t, h.HealthScore, 0.0)
}

func TestApplyHealthScoreStaysBounded(t *testing.T) {
	h := &models.SourceHealth{}
	for i := 0; i < 20; i++ {
		Apply(h, ScrapeOutcome{Success: true, JobsFound: 50, DurationMS: 10, At: time.Now()})
	}

	assert.LessOrEqual(t, h.HealthScore, 1.0)
	assert.GreaterOrEqual(t, h.HealthScore, 0.0)
}

func TestApplyAveragesJobsPerScrapeWithEMA(t *testing.T) {
	h := &models.SourceHealth{}
	Apply(h, ScrapeOutcome{Success: true, JobsFound: 10, At: time.Now()})
	first := h.AvgJobsPerScrape
	assert.Greater(t, first, 0.0)

	Apply(h, ScrapeOutcome{Success: true, JobsFound: 0, At: time.Now()})
	assert.Less(t, h.AvgJobsPerScrape, first, "a zero-job scrape should pull the average down")
}
