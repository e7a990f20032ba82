// Package filter implements the two-tier strike-based rejection engine:
// hard tier-1 rejections at zero AI cost, then a weighted tier-2 strike
// sum against a configurable threshold.
package filter

import (
	"strings"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/models"
)

// Engine is a pure function of (JobRecord, Config); it never consults
// external services and is idempotent.
type Engine struct {
	cfg *common.FilterConfig
}

func New(cfg *common.FilterConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate runs tier 1 then, only if tier 1 passes, tier 2.
func (e *Engine) Evaluate(job *models.JobRecord) models.FilterResult {
	if reason, rejected := e.tier1(job); rejected {
		return models.FilterResult{
			Rejected:   true,
			HardReason: reason,
			Threshold:  e.cfg.StrikeThreshold,
		}
	}

	strikes := e.tier2(job)
	total := 0
	for _, s := range strikes {
		total += s.Weight
	}

	return models.FilterResult{
		Rejected:    total >= e.cfg.StrikeThreshold,
		Strikes:     strikes,
		StrikeTotal: total,
		Threshold:   e.cfg.StrikeThreshold,
	}
}

func (e *Engine) tier1(job *models.JobRecord) (string, bool) {
	companyLower := strings.ToLower(job.CompanyName)
	for _, stop := range e.cfg.StopList {
		if strings.ToLower(stop) == companyLower {
			return "company on stop list: " + job.CompanyName, true
		}
	}

	haystack := strings.ToLower(job.Title + " " + job.Description)
	for _, token := range e.cfg.BlockList {
		if token == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(token)) {
			return "blocked token matched: " + token, true
		}
	}

	if !job.Remote && len(e.cfg.AllowedRegions) > 0 && !regionAllowed(job.Location, e.cfg.AllowedRegions) {
		return "location not in allowed regions: " + job.Location, true
	}

	return "", false
}

func (e *Engine) tier2(job *models.JobRecord) []models.StrikeHit {
	var hits []models.StrikeHit

	if !job.Remote && len(e.cfg.PreferredRegions) > 0 && !regionAllowed(job.Location, e.cfg.PreferredRegions) {
		hits = append(hits, models.StrikeHit{
			Category: "location", Rule: "outside preferred (non-required) regions: " + job.Location, Weight: e.cfg.Weights.Location,
		})
	}

	if job.SeniorityTag != "" {
		if mismatch := senorityMismatch(job.SeniorityTag, e.cfg); mismatch {
			hits = append(hits, models.StrikeHit{
				Category: "seniority", Rule: "level mismatch: " + job.SeniorityTag, Weight: e.cfg.Weights.Seniority,
			})
		}
	}

	if rank, missing := missingPrimarySkill(job.Skills, e.cfg.TechRanks); missing {
		hits = append(hits, models.StrikeHit{
			Category: "technology", Rule: "missing ranked skill", Weight: rank,
		})
	}

	if job.CompanySize > 0 {
		lo, hi := e.cfg.PreferredSize[0], e.cfg.PreferredSize[1]
		if (lo > 0 && job.CompanySize < lo) || (hi > 0 && job.CompanySize > hi) {
			hits = append(hits, models.StrikeHit{
				Category: "company_size", Rule: "outside preferred band", Weight: e.cfg.Weights.CompanySize,
			})
		}
	}

	if job.RoleType != "" && strings.EqualFold(job.RoleType, "contract") {
		hits = append(hits, models.StrikeHit{
			Category: "role_type", Rule: "contract vs permanent mismatch", Weight: e.cfg.Weights.RoleType,
		})
	}

	return hits
}

func regionAllowed(location string, allowed []string) bool {
	loc := strings.ToLower(location)
	for _, a := range allowed {
		if strings.Contains(loc, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// senorityMismatch is a placeholder heuristic: a tag containing "staff",
// "principal" or "director" counts as a mismatch signal. Real target-level
// comparison is left to the AI analysis stage; this catches obvious cases
// cheaply (e.g. "staff"/"principal" when targeting junior roles) without an
// AI call.
func senorityMismatch(tag string, cfg *common.FilterConfig) bool {
	lower := strings.ToLower(tag)
	return strings.Contains(lower, "staff") || strings.Contains(lower, "principal") || strings.Contains(lower, "director")
}

// missingPrimarySkill checks job.Skills against the ranked tech list; the
// strike weight equals the rank position (1-indexed, capped at 3) of the
// first ranked skill the job does not mention.
func missingPrimarySkill(jobSkills []string, ranked []string) (int, bool) {
	if len(ranked) == 0 {
		return 0, false
	}
	have := make(map[string]bool, len(jobSkills))
	for _, s := range jobSkills {
		have[strings.ToLower(s)] = true
	}
	for i, skill := range ranked {
		if !have[strings.ToLower(skill)] {
			rank := i + 1
			if rank > 3 {
				rank = 3
			}
			return rank, true
		}
	}
	return 0, false
}
