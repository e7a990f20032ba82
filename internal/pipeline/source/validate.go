package source

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/scrapers"
)

// Validate probes the detected source type and requires a non-zero listing
// count for high/medium confidence; low confidence is saved disabled and
// flagged for manual review.
func (d *Deps) Validate(ctx context.Context, item *models.WorkItem) error {
	var det detected
	if err := item.PipelineState.Get(models.KeyDetected, &det); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read detected: %w", err))
	}

	if models.Confidence(det.Confidence) == models.ConfidenceLow {
		selector, discoverErr := d.discoverSelectors(ctx, item.URL)
		if discoverErr != nil {
			d.Logger.Warn().Err(discoverErr).Str("item_id", item.ID).Msg("selector discovery failed, saving for manual validation")
		}
		if err := item.PipelineState.Set(models.KeyValidated, validated{
			JobCount:                 0,
			ManualValidationRequired: true,
			ListingSelector:          selector.ListingSelector,
			TitleSelector:            selector.TitleSelector,
			URLSelector:              selector.URLSelector,
			URLAttr:                  selector.URLAttr,
		}); err != nil {
			return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store validated: %w", err))
		}
		return nil
	}

	scraper, err := scrapers.ForType(d.HTTPClient, models.SourceType(det.Type), models.SelectorConfig{})
	if err != nil {
		return errkind.Wrap(errkind.Permanent, err)
	}

	raw, err := scraper.Fetch(ctx, item.URL)
	if err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("probe scrape: %w", err))
	}
	listings, err := scraper.ParseListings(ctx, raw)
	if err != nil {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("parse probe scrape: %w", err))
	}

	if len(listings) == 0 {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("probe scrape returned zero job records"))
	}

	if err := item.PipelineState.Set(models.KeyValidated, validated{JobCount: len(listings)}); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store validated: %w", err))
	}
	return nil
}

func (d *Deps) discoverSelectors(ctx context.Context, url string) (models.SelectorConfig, error) {
	raw, err := d.HTTPClient.Fetch(ctx, url)
	if err != nil {
		return models.SelectorConfig{}, fmt.Errorf("fetch for selector discovery: %w", err)
	}
	return scrapers.DiscoverSelectors(ctx, d.AI, raw)
}
