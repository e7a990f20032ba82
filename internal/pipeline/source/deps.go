// Package source implements the SOURCE_DISCOVERY work item pipeline stages:
// Detect, Validate, Save.
package source

import (
	"github.com/jobworker/engine/internal/scrapers"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
)

type Deps struct {
	HTTPClient *scrapers.Client
	AI         storeapi.AIProvider
	Sources    *badgerstore.SourceStore
	Logger     arbor.ILogger
}

// detected is the emitted pipeline_state["detected"] payload.
type detected struct {
	Type       string `json:"type"`
	Confidence string `json:"confidence"`
	BoardToken string `json:"board_token,omitempty"`
}

// validated is the emitted pipeline_state["validated"] payload.
type validated struct {
	JobCount                 int    `json:"job_count"`
	ManualValidationRequired bool   `json:"manual_validation_required"`
	ListingSelector          string `json:"listing_selector,omitempty"`
	TitleSelector            string `json:"title_selector,omitempty"`
	URLSelector              string `json:"url_selector,omitempty"`
	URLAttr                  string `json:"url_attr,omitempty"`
}
