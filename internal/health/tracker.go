// Package health implements the per-source reliability tracker: EMA
// updates on every completed scrape and a bounded health score feeding
// the rotation scheduler.
package health

import (
	"math"
	"time"

	"github.com/jobworker/engine/internal/models"
)

const (
	emaAlpha          = 0.3
	freshnessHalfDays = 14.0
	maxFailurePenalty = 5
)

// ScrapeOutcome is what the scrape runner reports back after one pass.
type ScrapeOutcome struct {
	Success    bool
	JobsFound  int
	DurationMS float64
	At         time.Time
}

// Apply mutates health in place per the EMA/health-score formulas below.
// Tracker writes are best-effort from the caller's perspective: Apply
// itself cannot fail, so a caller that wants "best effort, never fail the
// parent stage" semantics simply never checks an error here.
func Apply(h *models.SourceHealth, outcome ScrapeOutcome) {
	if outcome.Success {
		h.SuccessCount++
		h.ConsecutiveFailures = 0
	} else {
		h.FailureCount++
		h.ConsecutiveFailures++
	}

	h.AvgJobsPerScrape = ema(h.AvgJobsPerScrape, float64(outcome.JobsFound))
	h.AvgDurationMS = ema(h.AvgDurationMS, outcome.DurationMS)

	at := outcome.At
	h.LastScrapedAt = &at

	h.HealthScore = computeScore(h)
}

func ema(old, current float64) float64 {
	return (1-emaAlpha)*old + emaAlpha*current
}

func computeScore(h *models.SourceHealth) float64 {
	total := h.SuccessCount + h.FailureCount
	successRate := 1.0
	if total > 0 {
		successRate = float64(h.SuccessCount) / float64(total)
	}

	failurePenalty := float64(h.ConsecutiveFailures)
	if failurePenalty > maxFailurePenalty {
		failurePenalty = maxFailurePenalty
	}
	failureFactor := 1.0 - failurePenalty/maxFailurePenalty

	freshness := 1.0
	if h.LastScrapedAt != nil {
		days := time.Since(*h.LastScrapedAt).Hours() / 24.0
		freshness = math.Exp(-days / freshnessHalfDays)
	}

	score := successRate * failureFactor * freshness
	return clip(0, 1, score)
}

func clip(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
