package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsThroughFmtErrorf(t *testing.T) {
	base := Permanentf("bad selector: %s", "div.foo")
	wrapped := fmt.Errorf("probe scrape: %w", base)

	assert.Equal(t, Permanent, KindOf(wrapped))
}

func TestKindOfDefaultsToTransient(t *testing.T) {
	assert.Equal(t, Transient, KindOf(errors.New("plain network error")))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(Permanent, nil))
}

func TestErrorMessageIncludesKind(t *testing.T) {
	err := Invariantf("missing %s", "job_data")
	assert.Contains(t, err.Error(), "invariant_violation")
	assert.Contains(t, err.Error(), "missing job_data")
}

func TestUnwrapReachesOriginalError(t *testing.T) {
	original := errors.New("boom")
	wrapped := Wrap(Transient, original)
	assert.ErrorIs(t, wrapped, original)
}
