package scrapers

import (
	"context"
	"testing"
	"time"

	"github.com/jobworker/engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectClassifiesGreenhouseByURLShape(t *testing.T) {
	det, err := Detect(context.Background(), NewClient(time.Second, 100), "https://boards.greenhouse.io/acme-corp")
	require.NoError(t, err)
	assert.Equal(t, models.SourceGreenhouse, det.Type)
	assert.Equal(t, models.ConfidenceHigh, det.Confidence)
	assert.Equal(t, "acme-corp", det.BoardToken)
}

func TestDetectClassifiesWorkdayByURLShape(t *testing.T) {
	det, err := Detect(context.Background(), NewClient(time.Second, 100), "https://acme.myworkdayjobs.com/careers")
	require.NoError(t, err)
	assert.Equal(t, models.SourceWorkday, det.Type)
	assert.Equal(t, models.ConfidenceHigh, det.Confidence)
	assert.Equal(t, "acme", det.BoardToken)
}

func TestDetectFallsBackToLowConfidenceHTMLWhenProbeFails(t *testing.T) {
	client := NewClient(100*time.Millisecond, 100)
	det, err := Detect(context.Background(), client, "http://127.0.0.1:1/careers")
	require.NoError(t, err)
	assert.Equal(t, models.SourceHTML, det.Type)
	assert.Equal(t, models.ConfidenceLow, det.Confidence)
}
