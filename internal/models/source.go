package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var sourceValidate = validator.New()

type SourceType string

const (
	SourceGreenhouse SourceType = "greenhouse"
	SourceWorkday    SourceType = "workday"
	SourceRSS        SourceType = "rss"
	SourceAPI        SourceType = "api"
	SourceHTML       SourceType = "html"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SelectorConfig drives generic HTML scraping for SourceHTML sources.
type SelectorConfig struct {
	ListingSelector string `json:"listing_selector,omitempty"`
	TitleSelector   string `json:"title_selector,omitempty"`
	URLSelector     string `json:"url_selector,omitempty"`
	URLAttr         string `json:"url_attr,omitempty"`
}

// SourceHealth is the recency/reliability summary feeding rotation.
type SourceHealth struct {
	LastScrapedAt       *time.Time `json:"last_scraped_at,omitempty"`
	SuccessCount        int        `json:"success_count"`
	FailureCount        int        `json:"failure_count"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	AvgJobsPerScrape    float64    `json:"avg_jobs_per_scrape"`
	AvgDurationMS       float64    `json:"avg_duration_ms"`
	HealthScore         float64    `json:"health_score"`
}

// Source is a scrapable locus: a company's job board, an RSS feed, an
// aggregator API.
type Source struct {
	ID         string         `json:"id" badgerholdKey:"ID"`
	CompanyRef string         `json:"company_ref" badgerholdIndex:"CompanyRef"`
	Type       SourceType     `json:"type" validate:"required,oneof=greenhouse workday rss api html"`
	URL        string         `json:"url" validate:"required"`
	BoardToken string         `json:"board_token,omitempty"`
	Selector   SelectorConfig `json:"selector,omitempty"`

	Enabled    bool       `json:"enabled" badgerholdIndex:"Enabled"`
	Confidence Confidence `json:"confidence"`

	ManualValidationRequired bool `json:"manual_validation_required,omitempty"`

	Health SourceHealth `json:"health"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the required-field tags above using go-playground/validator.
func (s *Source) Validate() error {
	return sourceValidate.Struct(s)
}
