package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
)

// HTMLScraper scrapes a generic job board page using an explicit
// SelectorConfig. Selector discovery (when a Source has none yet) is handled
// separately by DiscoverSelectors, not by this type, since discovery needs
// an AI provider and a plain scrape does not.
type HTMLScraper struct {
	client   *Client
	selector models.SelectorConfig
}

func NewHTMLScraper(client *Client, selector models.SelectorConfig) *HTMLScraper {
	return &HTMLScraper{client: client, selector: selector}
}

func (s *HTMLScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Fetch(ctx, url)
}

func (s *HTMLScraper) ParseListings(ctx context.Context, raw []byte) ([]storeapi.ScrapedListing, error) {
	if s.selector.ListingSelector == "" {
		return nil, fmt.Errorf("html: no listing selector configured")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("html: parse document: %w", err)
	}

	var listings []storeapi.ScrapedListing
	doc.Find(s.selector.ListingSelector).Each(func(_ int, sel *goquery.Selection) {
		title := trimText(sel.Find(s.selector.TitleSelector).First().Text())
		if title == "" {
			return
		}

		urlSel := sel
		if s.selector.URLSelector != "" {
			urlSel = sel.Find(s.selector.URLSelector).First()
		}
		attr := s.selector.URLAttr
		if attr == "" {
			attr = "href"
		}
		href, ok := urlSel.Attr(attr)
		if !ok || href == "" {
			return
		}

		listings = append(listings, storeapi.ScrapedListing{URL: href, Title: title})
	})
	return listings, nil
}

// discoveredSelectors is the JSON shape requested from the AI provider
// during low-confidence source validation.
type discoveredSelectors struct {
	ListingSelector string `json:"listing_selector"`
	TitleSelector   string `json:"title_selector"`
	URLSelector     string `json:"url_selector"`
	URLAttr         string `json:"url_attr"`
}

const discoverSchemaHint = `{"listing_selector":"string","title_selector":"string","url_selector":"string","url_attr":"string"}`

// DiscoverSelectors asks the AI provider to propose CSS selectors for a job
// listing page it has not seen a board pattern for: generic HTML falls
// back to low confidence plus AI-assisted selector discovery.
func DiscoverSelectors(ctx context.Context, ai storeapi.AIProvider, rawHTML []byte) (models.SelectorConfig, error) {
	snippet := string(rawHTML)
	if len(snippet) > 20000 {
		snippet = snippet[:20000]
	}

	prompt := strings.Join([]string{
		"The following is a job listing page. Identify CSS selectors that, when",
		"applied with goquery, would extract each job listing, its title, and its",
		"detail-page URL.",
		"",
		"HTML:",
		snippet,
	}, "\n")

	raw, err := ai.Analyze(ctx, storeapi.TierCheap, prompt, discoverSchemaHint)
	if err != nil {
		return models.SelectorConfig{}, fmt.Errorf("discover selectors: %w", err)
	}

	var out discoveredSelectors
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return models.SelectorConfig{}, fmt.Errorf("discover selectors: parse response: %w", err)
	}
	if out.ListingSelector == "" || out.TitleSelector == "" {
		return models.SelectorConfig{}, fmt.Errorf("discover selectors: incomplete response")
	}

	return models.SelectorConfig{
		ListingSelector: out.ListingSelector,
		TitleSelector:   out.TitleSelector,
		URLSelector:     out.URLSelector,
		URLAttr:         out.URLAttr,
	}, nil
}

func trimText(s string) string {
	return strings.TrimSpace(s)
}
