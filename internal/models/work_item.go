// Package models defines the persisted document types of the pipeline
// engine: work items, companies, sources and their health, and job matches.
package models

import (
	"encoding/json"
	"time"
)

type WorkItemType string

const (
	TypeJob              WorkItemType = "JOB"
	TypeCompany          WorkItemType = "COMPANY"
	TypeSourceDiscovery  WorkItemType = "SOURCE_DISCOVERY"
	TypeScrape           WorkItemType = "SCRAPE"
)

type WorkItemStatus string

const (
	StatusPending    WorkItemStatus = "PENDING"
	StatusProcessing WorkItemStatus = "PROCESSING"
	StatusSuccess    WorkItemStatus = "SUCCESS"
	StatusFailed     WorkItemStatus = "FAILED"
	StatusSkipped    WorkItemStatus = "SKIPPED"
	StatusFiltered   WorkItemStatus = "FILTERED"
)

// IsTerminal reports whether status is one of the four final states.
func (s WorkItemStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped, StatusFiltered:
		return true
	default:
		return false
	}
}

// PipelineState is the additive, per-item map of stage-output name to
// arbitrary JSON payload. Presence of a key means that stage ran.
type PipelineState map[string]json.RawMessage

// Has reports whether the named stage output is already present.
func (s PipelineState) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

// Set stores value (marshaled to JSON) under key, initializing the map if
// required. It never removes an existing key, keeping state monotone.
func (s *PipelineState) Set(key string, value interface{}) error {
	if *s == nil {
		*s = make(PipelineState)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	(*s)[key] = data
	return nil
}

// Get unmarshals the stage output stored under key into out.
func (s PipelineState) Get(key string, out interface{}) error {
	raw, ok := s[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Stage output keys recognized by the dispatcher.
const (
	KeyJobData      = "job_data"
	KeyFilterResult = "filter_result"
	KeyMatchResult  = "match_result"
	KeySavedRef     = "saved_ref"

	KeyRawPages = "raw_pages"
	KeyExtracted = "extracted"
	KeyAnalysis  = "analysis"

	KeyDetected  = "detected"
	KeyValidated = "validated"
)

// WorkItem is the unit of queued work advanced through the pipeline.
type WorkItem struct {
	ID            string         `json:"id" badgerholdKey:"ID"`
	Type          WorkItemType   `json:"type" badgerholdIndex:"Type"`
	URL           string         `json:"url" badgerholdIndex:"URL"`
	Status        WorkItemStatus `json:"status" badgerholdIndex:"Status"`
	PipelineState PipelineState  `json:"pipeline_state"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	CreatedAt   time.Time  `json:"created_at" badgerholdIndex:"CreatedAt"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	ResultMessage string `json:"result_message,omitempty"`
	Error         string `json:"error,omitempty"`

	// Lineage
	TrackingID    string   `json:"tracking_id" badgerholdIndex:"TrackingID"`
	AncestryChain []string `json:"ancestry_chain"`
	SpawnDepth    int      `json:"spawn_depth" badgerholdIndex:"SpawnDepth"`
	MaxSpawnDepth int      `json:"max_spawn_depth"`

	// SourceRef is set on SCRAPE items, pointing at the Source being scraped.
	SourceRef string `json:"source_ref,omitempty"`

	// CompanyRef is set on COMPANY and SOURCE_DISCOVERY items spawned from a
	// known company, so the Save stage can attach the result without a name
	// lookup.
	CompanyRef string `json:"company_ref,omitempty" badgerholdIndex:"CompanyRef"`
}

// IsRoot reports whether this item was submitted externally rather than spawned.
func (w *WorkItem) IsRoot() bool {
	return len(w.AncestryChain) == 0
}
