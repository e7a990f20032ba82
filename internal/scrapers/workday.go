package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jobworker/engine/internal/storeapi"
)

// WorkdayScraper decodes the JSON facet-search endpoint workday boards
// expose at /wday/cxs/{tenant}/{board}/jobs, returning normalized listings.
type WorkdayScraper struct {
	client *Client
}

func NewWorkdayScraper(client *Client) *WorkdayScraper { return &WorkdayScraper{client: client} }

func (s *WorkdayScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Fetch(ctx, url)
}

type workdayJobPostingsResponse struct {
	JobPostings []struct {
		Title        string `json:"title"`
		ExternalPath string `json:"externalPath"`
		LocationsText string `json:"locationsText"`
	} `json:"jobPostings"`
}

func (s *WorkdayScraper) ParseListings(ctx context.Context, raw []byte) ([]storeapi.ScrapedListing, error) {
	var resp workdayJobPostingsResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("workday: decode job postings: %w", err)
	}

	listings := make([]storeapi.ScrapedListing, 0, len(resp.JobPostings))
	for _, p := range resp.JobPostings {
		if p.ExternalPath == "" || p.Title == "" {
			continue
		}
		listings = append(listings, storeapi.ScrapedListing{
			URL:   p.ExternalPath,
			Title: p.Title,
		})
	}
	return listings, nil
}
