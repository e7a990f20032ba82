// Package company implements the COMPANY work item pipeline stages: Fetch,
// Extract, Analyze, Save.
package company

import (
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/jobworker/engine/internal/queue"
	"github.com/jobworker/engine/internal/scrapers"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
)

type Deps struct {
	HTTPClient *scrapers.Client
	AI         storeapi.AIProvider
	Queue      *queue.Manager
	Companies  *badgerstore.CompanyStore
	Sources    *badgerstore.SourceStore
	Converter  *md.Converter
	Logger     arbor.ILogger

	// RankedSkills and PreferredHQSubstrings drive the Save stage's priority
	// scoring; sourced from filter.tech_ranks and a small preferred-location
	// list rather than inventing a new config namespace for one stage.
	RankedSkills          []string
	PreferredHQSubstrings []string
}

