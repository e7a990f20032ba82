package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jobworker/engine/internal/storeapi"
)

// APIScraper decodes a generic `{jobs: [{title, url, company}]}` aggregator
// response. Aggregator APIs vary, but share this shape closely enough that
// one decoder covers the representative case.
type APIScraper struct {
	client *Client
}

func NewAPIScraper(client *Client) *APIScraper { return &APIScraper{client: client} }

func (s *APIScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Fetch(ctx, url)
}

type apiListingsResponse struct {
	Jobs []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Company string `json:"company"`
	} `json:"jobs"`
}

func (s *APIScraper) ParseListings(ctx context.Context, raw []byte) ([]storeapi.ScrapedListing, error) {
	var resp apiListingsResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("api: decode listings: %w", err)
	}

	listings := make([]storeapi.ScrapedListing, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		if j.URL == "" || j.Title == "" {
			continue
		}
		listings = append(listings, storeapi.ScrapedListing{
			URL: j.URL, Title: j.Title, CompanyHint: j.Company,
		})
	}
	return listings, nil
}
