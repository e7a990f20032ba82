package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	cacheTTL   = 5 * time.Minute
	chunkSize  = 10
)

// ExistenceChecker is the store-side half of batch_exists: given a chunk of
// up to chunkSize normalized URLs of one item type, report which already
// exist (as a queued item or a saved record).
type ExistenceChecker func(ctx context.Context, urls []string) (map[string]bool, error)

// Cache is the process-wide dedup cache: an LRU with a 5-minute TTL keyed
// by normalized URL, recording both presence and absence so repeated
// misses for a URL that truly doesn't exist don't repeatedly hit the store.
type Cache struct {
	ristretto *ristretto.Cache[string, bool]
}

func NewCache() (*Cache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: 1e6,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create dedup cache: %w", err)
	}
	return &Cache{ristretto: rc}, nil
}

// BatchExists returns {url: bool} for each raw URL, using cached values
// where fresh and falling back to check in chunks of at most 10.
// A store error invalidates the affected entries and is propagated rather
// than swallowed; callers must treat an error as "unknown", never "known".
func (c *Cache) BatchExists(ctx context.Context, rawURLs []string, check ExistenceChecker) (map[string]bool, error) {
	result := make(map[string]bool, len(rawURLs))
	normalized := make(map[string]string, len(rawURLs)) // normalized -> raw
	var misses []string

	for _, raw := range rawURLs {
		norm, err := NormalizeURL(raw)
		if err != nil {
			return nil, fmt.Errorf("normalize %q: %w", raw, err)
		}
		normalized[norm] = raw
		if v, ok := c.ristretto.Get(norm); ok {
			result[raw] = v
			continue
		}
		misses = append(misses, norm)
	}

	for i := 0; i < len(misses); i += chunkSize {
		end := i + chunkSize
		if end > len(misses) {
			end = len(misses)
		}
		chunk := misses[i:end]

		found, err := check(ctx, chunk)
		if err != nil {
			for _, norm := range chunk {
				c.ristretto.Del(norm)
			}
			return nil, fmt.Errorf("batch exists check: %w", err)
		}

		for _, norm := range chunk {
			exists := found[norm]
			c.ristretto.SetWithTTL(norm, exists, 1, cacheTTL)
			result[normalized[norm]] = exists
		}
	}
	c.ristretto.Wait()

	return result, nil
}
