package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURLLowercasesSchemeAndHost(t *testing.T) {
	got, err := NormalizeURL("HTTPS://Example.COM/jobs/123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs/123", got)
}

func TestNormalizeURLStripsDefaultPort(t *testing.T) {
	got, err := NormalizeURL("https://example.com:443/jobs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs", got)
}

func TestNormalizeURLDropsTrailingSlash(t *testing.T) {
	got, err := NormalizeURL("https://example.com/jobs/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs", got)
}

func TestNormalizeURLDropsFragment(t *testing.T) {
	got, err := NormalizeURL("https://example.com/jobs#apply")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs", got)
}

func TestNormalizeURLDropsTrackingParams(t *testing.T) {
	got, err := NormalizeURL("https://example.com/jobs?utm_source=x&gclid=y&role=eng")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs?role=eng", got)
}

func TestNormalizeURLSortsRemainingQueryParams(t *testing.T) {
	got, err := NormalizeURL("https://example.com/jobs?z=1&a=2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs?a=2&z=1", got)
}

func TestNormalizeURLIsIdempotent(t *testing.T) {
	raw := "HTTPS://Example.com:443/jobs/?utm_source=x&b=2&a=1#frag"
	once, err := NormalizeURL(raw)
	require.NoError(t, err)
	twice, err := NormalizeURL(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestURLHashIsStableForEquivalentURLs(t *testing.T) {
	h1, err := URLHash("https://example.com/jobs/123?utm_source=newsletter")
	require.NoError(t, err)
	h2, err := URLHash("https://Example.com/jobs/123")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
