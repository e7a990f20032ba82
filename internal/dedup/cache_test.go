package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchExistsCallsCheckerOnlyOnceThenServesFromCache(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)

	calls := 0
	checker := func(ctx context.Context, urls []string) (map[string]bool, error) {
		calls++
		out := make(map[string]bool, len(urls))
		for _, u := range urls {
			out[u] = u == "https://example.com/jobs/1"
		}
		return out, nil
	}

	urls := []string{"https://example.com/jobs/1", "https://example.com/jobs/2"}

	first, err := c.BatchExists(context.Background(), urls, checker)
	require.NoError(t, err)
	assert.True(t, first["https://example.com/jobs/1"])
	assert.False(t, first["https://example.com/jobs/2"])
	assert.Equal(t, 1, calls)

	second, err := c.BatchExists(context.Background(), urls, checker)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call should be served entirely from cache")
}

func TestBatchExistsKeysResultByOriginalRawURL(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)

	checker := func(ctx context.Context, urls []string) (map[string]bool, error) {
		out := make(map[string]bool, len(urls))
		for _, u := range urls {
			out[u] = true
		}
		return out, nil
	}

	raw := "HTTPS://Example.com/jobs/1/?utm_source=x"
	result, err := c.BatchExists(context.Background(), []string{raw}, checker)
	require.NoError(t, err)

	_, ok := result[raw]
	assert.True(t, ok, "result must be keyed by the original raw URL, not the normalized form")
}

func TestBatchExistsPropagatesCheckerError(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)

	boom := assert.AnError
	checker := func(ctx context.Context, urls []string) (map[string]bool, error) {
		return nil, boom
	}

	_, err = c.BatchExists(context.Background(), []string{"https://example.com/jobs/1"}, checker)
	assert.ErrorIs(t, err, boom)
}
