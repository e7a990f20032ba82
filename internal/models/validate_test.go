package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceValidateRejectsMissingURL(t *testing.T) {
	s := &Source{Type: SourceGreenhouse}
	assert.Error(t, s.Validate())
}

func TestSourceValidateRejectsUnknownType(t *testing.T) {
	s := &Source{Type: SourceType("carrier-pigeon"), URL: "https://example.com"}
	assert.Error(t, s.Validate())
}

func TestSourceValidatePassesWithRequiredFields(t *testing.T) {
	s := &Source{Type: SourceRSS, URL: "https://example.com/feed"}
	assert.NoError(t, s.Validate())
}

func TestCompanyValidateRejectsMissingName(t *testing.T) {
	c := &Company{Website: "https://example.com"}
	assert.Error(t, c.Validate())
}

func TestCompanyValidatePassesWithName(t *testing.T) {
	c := &Company{Name: "Acme Corp"}
	assert.NoError(t, c.Validate())
}
