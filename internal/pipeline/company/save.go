package company

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/queue"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeName(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// These weights give a base score from tech-stack alignment against the
// candidate's ranked skills, plus a flat bonus for an HQ location the
// candidate prefers.
const (
	techAlignmentPoints = 8
	hqBonusPoints       = 15
	maxScore            = 100
)

// Save upserts the company, computes its priority tier/score, and
// safe-spawns SOURCE_DISCOVERY if analysis produced a job-board hint and no
// enabled source exists yet.
func (d *Deps) Save(ctx context.Context, item *models.WorkItem) error {
	var a analysis
	if err := item.PipelineState.Get(models.KeyAnalysis, &a); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read analysis: %w", err))
	}

	name := companyNameFromURL(item.URL)
	normalized := normalizeName(name)
	score := computeScore(a.TechStack, d.RankedSkills, a.HQLocation, d.PreferredHQSubstrings)

	c := &models.Company{
		ID:              common.NewID("co"),
		Name:            name,
		NormalizedName:  normalized,
		Website:         item.URL,
		About:           a.About,
		Culture:         a.Culture,
		Mission:         a.Mission,
		TechStack:       a.TechStack,
		Size:            a.Size,
		Industry:        a.Industry,
		Founded:         a.Founded,
		HQLocation:      a.HQLocation,
		PriorityScore:   score,
		PriorityTier:    models.TierForScore(score),
		JobBoardHintURL: a.JobBoardHintURL,
	}

	if err := c.Validate(); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("validate company: %w", err))
	}

	if err := d.Companies.Upsert(ctx, c); err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("upsert company: %w", err))
	}

	if a.JobBoardHintURL != "" {
		d.maybeSpawnSource(ctx, item, c)
	}

	if err := item.PipelineState.Set(models.KeySavedRef, c.ID); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store saved_ref: %w", err))
	}
	item.Status = models.StatusSuccess
	return nil
}

func (d *Deps) maybeSpawnSource(ctx context.Context, parent *models.WorkItem, c *models.Company) {
	existing, err := d.Sources.EnabledForCompany(ctx, c.ID)
	if err != nil {
		d.Logger.Warn().Err(err).Str("company_id", c.ID).Msg("failed to check existing sources")
		return
	}
	if len(existing) > 0 {
		return
	}

	_, err = d.Queue.Spawn(ctx, parent, queue.NewItemData{
		Type:       models.TypeSourceDiscovery,
		URL:        c.JobBoardHintURL,
		CompanyRef: c.ID,
	})
	if err == nil {
		return
	}
	if _, ok := err.(*queue.SpawnRejectedError); ok {
		d.Logger.Debug().Str("item_id", parent.ID).Err(err).Msg("source discovery spawn refused")
		return
	}
	d.Logger.Warn().Str("item_id", parent.ID).Err(err).Msg("failed to spawn source discovery item")
}

func companyNameFromURL(rawURL string) string {
	name := strings.TrimPrefix(rawURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.SplitN(name, "/", 2)[0]
	name = strings.TrimPrefix(name, "www.")
	return name
}

// computeScore bands tech-stack alignment with the candidate's ranked
// skills and an HQ-location bonus into a 0-100 priority score.
func computeScore(techStack, rankedSkills []string, hqLocation string, preferredHQSubstrings []string) int {
	score := 0
	have := make(map[string]bool, len(techStack))
	for _, t := range techStack {
		have[strings.ToLower(t)] = true
	}
	for _, skill := range rankedSkills {
		if have[strings.ToLower(skill)] {
			score += techAlignmentPoints
		}
	}

	hqLower := strings.ToLower(hqLocation)
	for _, pref := range preferredHQSubstrings {
		if pref != "" && strings.Contains(hqLower, strings.ToLower(pref)) {
			score += hqBonusPoints
			break
		}
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}
