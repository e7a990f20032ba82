package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
)

const matchSchemaHint = `{"score":0,"matched_skills":["string"],"missing_skills":["string"],"suggested_summary":"string","highlight_skills":["string"]}`

type scoreResponse struct {
	Score            int      `json:"score"`
	MatchedSkills    []string `json:"matched_skills"`
	MissingSkills    []string `json:"missing_skills"`
	SuggestedSummary string   `json:"suggested_summary"`
	HighlightSkills  []string `json:"highlight_skills"`
}

// Analyze scores the job against the candidate profile, escalating tiers:
// cheap for an initial classification pass, medium for the real score,
// expensive only to rescore a borderline result.
func (d *Deps) Analyze(ctx context.Context, item *models.WorkItem) error {
	var record models.JobRecord
	if err := item.PipelineState.Get(models.KeyJobData, &record); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read job_data: %w", err))
	}

	prompt := buildScorePrompt(&record)

	if _, err := d.AI.Analyze(ctx, storeapi.TierCheap, "Classify whether this job is a plausible match at all.\n\n"+prompt, ""); err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("cheap-tier classify: %w", err))
	}

	scoreTier := storeapi.TierMedium
	raw, err := d.AI.Analyze(ctx, scoreTier, prompt, matchSchemaHint)
	if err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("medium-tier score: %w", err))
	}
	var parsed scoreResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("parse medium-tier score response: %w", err))
	}

	rescored := false
	min := d.Config.Thresholds.MinMatchScore
	band := d.Config.Thresholds.RescoreBand
	if abs(parsed.Score-min) <= band {
		rescoreRaw, err := d.AI.Analyze(ctx, storeapi.TierExpensive, prompt, matchSchemaHint)
		if err != nil {
			return errkind.Wrap(errkind.Transient, fmt.Errorf("expensive-tier rescore: %w", err))
		}
		var rescoredParsed scoreResponse
		if err := json.Unmarshal([]byte(rescoreRaw), &rescoredParsed); err != nil {
			return errkind.Wrap(errkind.Permanent, fmt.Errorf("parse expensive-tier score response: %w", err))
		}
		parsed = rescoredParsed
		rescored = true
		scoreTier = storeapi.TierExpensive
	}

	result := models.MatchResult{
		Score:         parsed.Score,
		Tier:          string(scoreTier),
		MatchedSkills: parsed.MatchedSkills,
		MissingSkills: parsed.MissingSkills,
		ResumeIntake: models.ResumeIntake{
			SuggestedSummary: parsed.SuggestedSummary,
			HighlightSkills:  parsed.HighlightSkills,
		},
		Rescored: rescored,
	}
	if err := item.PipelineState.Set(models.KeyMatchResult, result); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store match_result: %w", err))
	}

	if result.Score < min {
		item.Status = models.StatusSkipped
		item.ResultMessage = fmt.Sprintf("score %d below minimum %d", result.Score, min)
	}
	return nil
}

func buildScorePrompt(record *models.JobRecord) string {
	return fmt.Sprintf(
		"Job title: %s\nCompany: %s\nLocation: %s\nRemote: %v\nDescription:\n%s",
		record.Title, record.CompanyName, record.Location, record.Remote, record.Description,
	)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
