// Package job implements the JOB work item pipeline stages: Scrape, Filter,
// Analyze, Save.
package job

import (
	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/filter"
	"github.com/jobworker/engine/internal/queue"
	"github.com/jobworker/engine/internal/scrapers"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
)

// Deps collects every collaborator the job stages need. A single struct
// keeps wiring in cmd/jobworker to one call per pipeline, the same shared
// dependency-bag shape used for every pipeline's service handlers.
type Deps struct {
	HTTPClient  *scrapers.Client
	AI          storeapi.AIProvider
	Filter      *filter.Engine
	Queue       *queue.Manager
	Companies   *badgerstore.CompanyStore
	JobMatches  *badgerstore.JobMatchStore
	Config      *common.AIConfig
	Logger      arbor.ILogger
}
