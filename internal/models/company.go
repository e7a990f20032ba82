package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var companyValidate = validator.New()

type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// TierRank returns the sort-order rank of a tier, smaller is better,
// matching the rotation scheduler's tie-break ordering (S < A < B < C < D).
func TierRank(t Tier) int {
	switch t {
	case TierS:
		return 0
	case TierA:
		return 1
	case TierB:
		return 2
	case TierC:
		return 3
	case TierD:
		return 4
	default:
		return 5
	}
}

// TierForScore bands a 0-100+ priority score into a tier.
func TierForScore(score int) Tier {
	switch {
	case score >= 90:
		return TierS
	case score >= 70:
		return TierA
	case score >= 50:
		return TierB
	case score >= 30:
		return TierC
	default:
		return TierD
	}
}

// Company is the external collaborator's document describing one employer.
type Company struct {
	ID             string    `json:"id" badgerholdKey:"ID"`
	Name           string    `json:"name" validate:"required"`
	NormalizedName string    `json:"normalized_name" badgerholdIndex:"NormalizedName"`
	Website        string    `json:"website,omitempty"`

	About       string   `json:"about,omitempty"`
	Culture     string   `json:"culture,omitempty"`
	Mission     string   `json:"mission,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
	Size        string   `json:"size,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Founded     string   `json:"founded,omitempty"`
	HQLocation  string   `json:"hq_location,omitempty"`

	PriorityTier  Tier `json:"priority_tier" badgerholdIndex:"PriorityTier"`
	PriorityScore int  `json:"priority_score"`

	JobBoardHintURL string `json:"job_board_hint_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the required-field tags above using go-playground/validator.
func (c *Company) Validate() error {
	return companyValidate.Struct(c)
}
