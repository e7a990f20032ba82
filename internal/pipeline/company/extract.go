package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

const maxExtractedChars = 30000

// Extract strips boilerplate and converts the surviving body to markdown.
func (d *Deps) Extract(ctx context.Context, item *models.WorkItem) error {
	var pages []rawPage
	if err := item.PipelineState.Get(models.KeyRawPages, &pages); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read raw_pages: %w", err))
	}

	var combined strings.Builder
	for _, p := range pages {
		cleaned, err := cleanHTML(p.HTML)
		if err != nil {
			d.Logger.Debug().Str("path", p.Path).Err(err).Msg("company page failed to clean, skipping")
			continue
		}
		markdown, err := d.Converter.ConvertString(cleaned)
		if err != nil {
			d.Logger.Debug().Str("path", p.Path).Err(err).Msg("company page failed markdown conversion, skipping")
			continue
		}
		combined.WriteString(markdown)
		combined.WriteString("\n\n")
	}

	text := combined.String()
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars]
	}
	if strings.TrimSpace(text) == "" {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("no extractable content across company pages"))
	}

	if err := item.PipelineState.Set(models.KeyExtracted, text); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store extracted: %w", err))
	}
	return nil
}

func cleanHTML(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("nav, footer, script, style, noscript").Remove()
	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize cleaned body: %w", err)
	}
	return html, nil
}
