package scrapers

import (
	"fmt"

	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
)

// ForType builds the capability implementation matching a source's type,
// the tier-keyed-factory idiom applied to scrapers instead of AI providers.
func ForType(client *Client, sourceType models.SourceType, selector models.SelectorConfig) (storeapi.Scraper, error) {
	switch sourceType {
	case models.SourceGreenhouse:
		return NewGreenhouseScraper(client), nil
	case models.SourceWorkday:
		return NewWorkdayScraper(client), nil
	case models.SourceRSS:
		return NewRSSScraper(client), nil
	case models.SourceAPI:
		return NewAPIScraper(client), nil
	case models.SourceHTML:
		return NewHTMLScraper(client, selector), nil
	default:
		return nil, fmt.Errorf("scrapers: unknown source type %q", sourceType)
	}
}
