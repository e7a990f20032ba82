package scrapers

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jobworker/engine/internal/storeapi"
)

// RSSScraper parses RSS 2.0 and Atom feeds with encoding/xml. No RSS parsing
// library appears anywhere in the retrieval pack, so this is the one
// deliberate standard-library exception named in DESIGN.md; everything else
// in this package uses goquery or encoding/json instead.
type RSSScraper struct {
	client *Client
}

func NewRSSScraper(client *Client) *RSSScraper { return &RSSScraper{client: client} }

func (s *RSSScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.client.Fetch(ctx, url)
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
	// Atom fallback
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

func (s *RSSScraper) ParseListings(ctx context.Context, raw []byte) ([]storeapi.ScrapedListing, error) {
	var feed rssFeed
	dec := xml.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("rss: decode feed: %w", err)
	}

	var listings []storeapi.ScrapedListing
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		listings = append(listings, storeapi.ScrapedListing{URL: link, Title: title})
	}
	for _, entry := range feed.Entries {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link.Href)
		if title == "" || link == "" {
			continue
		}
		listings = append(listings, storeapi.ScrapedListing{URL: link, Title: title})
	}
	return listings, nil
}
