package source

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/scrapers"
)

// Detect classifies item.URL's source type.
func (d *Deps) Detect(ctx context.Context, item *models.WorkItem) error {
	det, err := scrapers.Detect(ctx, d.HTTPClient, item.URL)
	if err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("detect source type: %w", err))
	}

	if err := item.PipelineState.Set(models.KeyDetected, detected{
		Type:       string(det.Type),
		Confidence: string(det.Confidence),
		BoardToken: det.BoardToken,
	}); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store detected: %w", err))
	}
	return nil
}
