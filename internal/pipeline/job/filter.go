package job

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

// Filter applies the two-tier engine to the scraped job. A rejection is a
// terminal FILTERED status, not an error: the item has been processed
// successfully according to policy.
func (d *Deps) Filter(ctx context.Context, item *models.WorkItem) error {
	var record models.JobRecord
	if err := item.PipelineState.Get(models.KeyJobData, &record); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read job_data: %w", err))
	}

	result := d.Filter.Evaluate(&record)
	if err := item.PipelineState.Set(models.KeyFilterResult, result); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store filter_result: %w", err))
	}

	if result.Rejected {
		item.Status = models.StatusFiltered
		reason := result.HardReason
		if reason == "" {
			reason = fmt.Sprintf("strike total %d >= threshold %d", result.StrikeTotal, result.Threshold)
		}
		item.ResultMessage = reason
	}
	return nil
}
