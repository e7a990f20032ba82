package filter

import (
	"testing"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func baseConfig() *common.FilterConfig {
	return &common.FilterConfig{
		StrikeThreshold: 5,
		TechRanks:       []string{"go", "kubernetes", "postgres"},
		StopList:        []string{"Acme Corp"},
		BlockList:       []string{"unpaid"},
		AllowedRegions:  []string{"remote", "san francisco"},
		PreferredSize:   [2]int{10, 500},
		Weights: common.StrikeWeights{
			Location:    3,
			Seniority:   2,
			CompanySize: 1,
			RoleType:    2,
		},
	}
}

func TestEvaluateRejectsStopListCompanyRegardlessOfStrikes(t *testing.T) {
	e := New(baseConfig())
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Acme Corp",
		Title:       "Senior Go Engineer",
		Skills:      []string{"go", "kubernetes", "postgres"},
		Remote:      true,
	})

	assert.True(t, result.Rejected)
	assert.Contains(t, result.HardReason, "stop list")
	assert.Empty(t, result.Strikes, "tier 1 rejection short-circuits tier 2")
}

func TestEvaluateRejectsBlockedTokenInDescription(t *testing.T) {
	e := New(baseConfig())
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Title:       "Engineer",
		Description: "This is an unpaid internship",
		Remote:      true,
	})

	assert.True(t, result.Rejected)
	assert.Contains(t, result.HardReason, "blocked token")
}

func TestEvaluateRejectsLocationOutsideAllowedRegionsWhenNotRemote(t *testing.T) {
	e := New(baseConfig())
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Location:    "Berlin",
		Remote:      false,
	})

	assert.True(t, result.Rejected)
	assert.Contains(t, result.HardReason, "location")
}

func TestEvaluatePassesCleanJobWithNoStrikes(t *testing.T) {
	e := New(baseConfig())
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Location:    "Remote",
		Remote:      true,
		Skills:      []string{"go", "kubernetes", "postgres"},
		CompanySize: 100,
		RoleType:    "permanent",
	})

	assert.False(t, result.Rejected)
	assert.Equal(t, 0, result.StrikeTotal)
}

func TestEvaluateStrikesLocationOutsidePreferredRegionsWhenNotRemote(t *testing.T) {
	cfg := baseConfig()
	cfg.PreferredRegions = []string{"austin"}
	e := New(cfg)
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Location:    "San Francisco",
		Remote:      false,
		Skills:      []string{"go", "kubernetes", "postgres"},
		CompanySize: 100,
		RoleType:    "permanent",
	})

	assert.False(t, result.Rejected, "preferred regions are advisory, not a hard gate")
	assert.Equal(t, 3, result.StrikeTotal)
	if assert.Len(t, result.Strikes, 1) {
		assert.Equal(t, "location", result.Strikes[0].Category)
	}
}

func TestEvaluateAccumulatesStrikesBelowThreshold(t *testing.T) {
	e := New(baseConfig())
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Remote:      true,
		Skills:      []string{"kubernetes", "postgres"}, // missing "go", rank 1
		CompanySize: 5,                                  // below preferred band, weight 1
	})

	assert.False(t, result.Rejected)
	assert.Equal(t, 2, result.StrikeTotal) // rank(1) + company_size(1)
	assert.Len(t, result.Strikes, 2)
}

func TestEvaluateRejectsWhenStrikeTotalMeetsThreshold(t *testing.T) {
	cfg := baseConfig()
	cfg.StrikeThreshold = 2
	e := New(cfg)
	result := e.Evaluate(&models.JobRecord{
		CompanyName: "Other Co",
		Remote:      true,
		Skills:      []string{},
		CompanySize: 5,
	})

	assert.True(t, result.Rejected)
	assert.Equal(t, cfg.StrikeThreshold, result.Threshold)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := New(baseConfig())
	job := &models.JobRecord{
		CompanyName: "Other Co",
		Remote:      true,
		Skills:      []string{"go"},
		RoleType:    "contract",
	}

	first := e.Evaluate(job)
	second := e.Evaluate(job)
	assert.Equal(t, first, second)
}
