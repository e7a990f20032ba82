package job

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/dedup"
	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/queue"
	"github.com/jobworker/engine/internal/storeapi"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeCompanyName(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Save writes the terminal JobMatch and, if the company is not yet known,
// safe-spawns a COMPANY item for it. A spawn refusal is expected engine
// behavior here and never fails the save.
func (d *Deps) Save(ctx context.Context, item *models.WorkItem) error {
	var record models.JobRecord
	if err := item.PipelineState.Get(models.KeyJobData, &record); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read job_data: %w", err))
	}
	var match models.MatchResult
	if err := item.PipelineState.Get(models.KeyMatchResult, &match); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read match_result: %w", err))
	}

	urlHash, err := dedup.URLHash(item.URL)
	if err != nil {
		return errkind.Wrap(errkind.Permanent, fmt.Errorf("hash job url: %w", err))
	}

	companyRef := ""
	if record.CompanyName != "" {
		normalized := normalizeCompanyName(record.CompanyName)
		company, err := d.Companies.GetByNormalizedName(ctx, normalized)
		switch {
		case err == nil:
			companyRef = company.ID
		case err == storeapi.ErrNotFound:
			// Ordering across a tracking_id's spawned items is not
			// guaranteed: the job match is saved with an empty company_ref
			// now and a COMPANY item is spawned to fill it in independently.
			d.spawnCompany(ctx, item, &record)
		default:
			return errkind.Wrap(errkind.Transient, fmt.Errorf("lookup company: %w", err))
		}
	}

	jobMatch := &models.JobMatch{
		ID:            common.NewID("jm"),
		WorkItemID:    item.ID,
		CompanyRef:    companyRef,
		URL:           item.URL,
		URLHash:       urlHash,
		Title:         record.Title,
		CompanyName:   record.CompanyName,
		Location:      record.Location,
		Remote:        record.Remote,
		Score:         match.Score,
		MatchedSkills: match.MatchedSkills,
		MissingSkills: match.MissingSkills,
		ResumeIntake:  match.ResumeIntake,
		CreatedAt:     time.Now(),
	}

	var filterResult models.FilterResult
	_ = item.PipelineState.Get(models.KeyFilterResult, &filterResult)
	jobMatch.StrikeTotal = filterResult.StrikeTotal

	if err := d.JobMatches.Create(ctx, jobMatch); err != nil {
		return errkind.Wrap(errkind.Transient, fmt.Errorf("create job match: %w", err))
	}

	if err := item.PipelineState.Set(models.KeySavedRef, jobMatch.ID); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store saved_ref: %w", err))
	}
	item.Status = models.StatusSuccess
	return nil
}

func (d *Deps) spawnCompany(ctx context.Context, parent *models.WorkItem, record *models.JobRecord) {
	target := record.CompanyURL
	if target == "" {
		target = siteRoot(record.URL)
	}
	if target == "" {
		return
	}

	_, err := d.Queue.Spawn(ctx, parent, queue.NewItemData{
		Type: models.TypeCompany,
		URL:  target,
	})
	if err == nil {
		return
	}
	if _, ok := err.(*queue.SpawnRejectedError); ok {
		d.Logger.Debug().Str("item_id", parent.ID).Str("target", target).Err(err).Msg("company spawn refused")
		return
	}
	d.Logger.Warn().Str("item_id", parent.ID).Err(err).Msg("failed to spawn company item")
}

// siteRoot falls back to the job URL's scheme+host when no explicit company
// website was extracted, so a company can still be discovered from it.
func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
