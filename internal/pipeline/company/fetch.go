package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

var aboutPaths = []string{"/about", "/about-us", "/company", "/careers", ""}

// rawPage is one fetched candidate page; multiple may be collected before
// extraction runs over the concatenated result.
type rawPage struct {
	Path string `json:"path"`
	HTML string `json:"html"`
}

// Fetch tries the known about/career sub-paths in order, collecting whatever
// HTML is reachable. Only total failure across every candidate is a stage
// failure.
func (d *Deps) Fetch(ctx context.Context, item *models.WorkItem) error {
	base := strings.TrimRight(item.URL, "/")

	var pages []rawPage
	for _, path := range aboutPaths {
		candidate := base + path
		raw, err := d.HTTPClient.Fetch(ctx, candidate)
		if err != nil {
			d.Logger.Debug().Str("url", candidate).Err(err).Msg("company fetch candidate failed")
			continue
		}
		pages = append(pages, rawPage{Path: path, HTML: string(raw)})
	}

	if len(pages) == 0 {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("no reachable about/career page under %s", base))
	}

	if err := item.PipelineState.Set(models.KeyRawPages, pages); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store raw_pages: %w", err))
	}
	return nil
}
