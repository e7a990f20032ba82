package source

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

// Save upserts the source; default enabled state is confidence == high.
func (d *Deps) Save(ctx context.Context, item *models.WorkItem) error {
	var det detected
	if err := item.PipelineState.Get(models.KeyDetected, &det); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read detected: %w", err))
	}
	var val validated
	if err := item.PipelineState.Get(models.KeyValidated, &val); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read validated: %w", err))
	}

	src := &models.Source{
		ID:         common.NewID("src"),
		CompanyRef: item.CompanyRef,
		Type:       models.SourceType(det.Type),
		URL:        item.URL,
		BoardToken: det.BoardToken,
		Confidence: models.Confidence(det.Confidence),
		Enabled:    models.Confidence(det.Confidence) == models.ConfidenceHigh,
		ManualValidationRequired: val.ManualValidationRequired,
		Selector: models.SelectorConfig{
			ListingSelector: val.ListingSelector,
			TitleSelector:   val.TitleSelector,
			URLSelector:     val.URLSelector,
			URLAttr:         val.URLAttr,
		},
	}

	if err := src.Validate(); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("validate source: %w", err))
	}

	if err := d.Sources.Upsert(ctx, src); err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("upsert source: %w", err))
	}

	if err := item.PipelineState.Set(models.KeySavedRef, src.ID); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store saved_ref: %w", err))
	}
	item.Status = models.StatusSuccess
	return nil
}
