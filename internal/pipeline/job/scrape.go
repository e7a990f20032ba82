package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

// Scrape downloads the job detail page and extracts a JobRecord. A job
// item's URL always resolves to an HTML page regardless of which source
// type produced it, so extraction here is one generic goquery-based
// reader rather than per-source-type logic.
func (d *Deps) Scrape(ctx context.Context, item *models.WorkItem) error {
	raw, err := d.HTTPClient.Fetch(ctx, item.URL)
	if err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("fetch job page: %w", err))
	}

	record, err := extractJobRecord(raw, item.URL)
	if err != nil {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("extract job record: %w", err))
	}

	if err := item.PipelineState.Set(models.KeyJobData, record); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store job_data: %w", err))
	}
	return nil
}

func extractJobRecord(raw []byte, url string) (*models.JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := firstNonEmpty(
		metaContent(doc, "og:title"),
		doc.Find("h1").First().Text(),
		doc.Find("title").First().Text(),
	)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("no title found on job page")
	}

	description := strings.TrimSpace(firstNonEmpty(
		metaContent(doc, "og:description"),
		metaContent(doc, "description"),
		doc.Find("body").Text(),
	))

	company := strings.TrimSpace(metaContent(doc, "og:site_name"))

	lower := strings.ToLower(description + " " + title)
	remote := strings.Contains(lower, "remote")

	return &models.JobRecord{
		Title:       title,
		CompanyName: company,
		Location:    guessLocation(lower),
		Remote:      remote,
		Description: truncate(description, 20000),
		URL:         url,
	}, nil
}

func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, name, name))
	content, _ := sel.First().Attr("content")
	return content
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func guessLocation(lowerText string) string {
	if strings.Contains(lowerText, "remote") {
		return "Remote"
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
