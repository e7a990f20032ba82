package scrapers

import (
	"context"
	"regexp"
	"strings"

	"github.com/jobworker/engine/internal/models"
)

var (
	greenhousePattern = regexp.MustCompile(`(?i)boards\.greenhouse\.io/([a-z0-9_-]+)`)
	workdayPattern    = regexp.MustCompile(`(?i)([a-z0-9_-]+)\.myworkdayjobs\.com`)
)

// Detection is the result of classifying a candidate source URL.
type Detection struct {
	Type       models.SourceType
	Confidence models.Confidence
	BoardToken string
}

// Detect classifies url: greenhouse/workday match on strict URL shape
// (high confidence, no network call needed); rss/api are decided by a
// content-type probe; anything else falls back to low-confidence generic
// html, requiring downstream AI-assisted selector discovery.
func Detect(ctx context.Context, client *Client, url string) (Detection, error) {
	if m := greenhousePattern.FindStringSubmatch(url); m != nil {
		return Detection{Type: models.SourceGreenhouse, Confidence: models.ConfidenceHigh, BoardToken: m[1]}, nil
	}
	if m := workdayPattern.FindStringSubmatch(url); m != nil {
		return Detection{Type: models.SourceWorkday, Confidence: models.ConfidenceHigh, BoardToken: m[1]}, nil
	}

	contentType, err := client.ContentType(ctx, url)
	if err == nil {
		switch {
		case strings.Contains(contentType, "rss+xml") || strings.Contains(contentType, "atom+xml"):
			return Detection{Type: models.SourceRSS, Confidence: models.ConfidenceHigh}, nil
		case strings.Contains(contentType, "application/json"):
			return Detection{Type: models.SourceAPI, Confidence: models.ConfidenceHigh}, nil
		}
	}

	return Detection{Type: models.SourceHTML, Confidence: models.ConfidenceLow}, nil
}
