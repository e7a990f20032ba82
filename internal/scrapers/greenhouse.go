package scrapers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobworker/engine/internal/storeapi"
)

// GreenhouseScraper fetches a board's public listing page and extracts job
// postings with goquery, following the selector shape Greenhouse boards
// share across companies (a `div.opening` per listing).
type GreenhouseScraper struct {
	client *Client
}

func NewGreenhouseScraper(client *Client) *GreenhouseScraper { return &GreenhouseScraper{client: client} }

func (s *GreenhouseScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Fetch(ctx, url)
}

func (s *GreenhouseScraper) ParseListings(ctx context.Context, raw []byte) ([]storeapi.ScrapedListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("greenhouse: parse html: %w", err)
	}

	var listings []storeapi.ScrapedListing
	doc.Find("div.opening").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a")
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		title := trimText(link.Text())
		if title == "" {
			return
		}
		listings = append(listings, storeapi.ScrapedListing{
			URL:   href,
			Title: title,
		})
	})
	return listings, nil
}
