package queue

import (
	"context"
	"fmt"
	"testing"

	"github.com/jobworker/engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopStage(name string) StageFunc {
	return func(ctx context.Context, item *models.WorkItem) error { return nil }
}

func allStages() Stages {
	return Stages{
		JobScrape:      noopStage("JOB_SCRAPE"),
		JobFilter:      noopStage("JOB_FILTER"),
		JobAnalyze:     noopStage("JOB_ANALYZE"),
		JobSave:        noopStage("JOB_SAVE"),
		CompanyFetch:   noopStage("COMPANY_FETCH"),
		CompanyExtract: noopStage("COMPANY_EXTRACT"),
		CompanyAnalyze: noopStage("COMPANY_ANALYZE"),
		CompanySave:    noopStage("COMPANY_SAVE"),
		SourceDetect:   noopStage("SOURCE_DETECT"),
		SourceValidate: noopStage("SOURCE_VALIDATE"),
		SourceSave:     noopStage("SOURCE_SAVE"),
		ScrapeRun:      noopStage("SCRAPE_RUN"),
	}
}

func withKeys(keys ...string) models.PipelineState {
	s := models.PipelineState{}
	for _, k := range keys {
		_ = s.Set(k, true)
	}
	return s
}

func TestSelectStageCoversEveryJobProgressionState(t *testing.T) {
	d := NewDispatcher(allStages())

	cases := []struct {
		state models.PipelineState
		want  string
	}{
		{withKeys(), "JOB_SCRAPE"},
		{withKeys(models.KeyJobData), "JOB_FILTER"},
		{withKeys(models.KeyJobData, models.KeyFilterResult), "JOB_ANALYZE"},
		{withKeys(models.KeyJobData, models.KeyFilterResult, models.KeyMatchResult), "JOB_SAVE"},
	}
	for _, c := range cases {
		item := &models.WorkItem{Type: models.TypeJob, PipelineState: c.state}
		name, fn, err := d.SelectStage(item)
		require.NoError(t, err)
		assert.Equal(t, c.want, name)
		assert.NotNil(t, fn)
	}
}

func TestSelectStageCoversEveryCompanyProgressionState(t *testing.T) {
	d := NewDispatcher(allStages())

	cases := []struct {
		state models.PipelineState
		want  string
	}{
		{withKeys(), "COMPANY_FETCH"},
		{withKeys(models.KeyRawPages), "COMPANY_EXTRACT"},
		{withKeys(models.KeyRawPages, models.KeyExtracted), "COMPANY_ANALYZE"},
		{withKeys(models.KeyRawPages, models.KeyExtracted, models.KeyAnalysis), "COMPANY_SAVE"},
	}
	for _, c := range cases {
		item := &models.WorkItem{Type: models.TypeCompany, PipelineState: c.state}
		name, fn, err := d.SelectStage(item)
		require.NoError(t, err)
		assert.Equal(t, c.want, name)
		assert.NotNil(t, fn)
	}
}

func TestSelectStageCoversEverySourceDiscoveryProgressionState(t *testing.T) {
	d := NewDispatcher(allStages())

	cases := []struct {
		state models.PipelineState
		want  string
	}{
		{withKeys(), "SOURCE_DETECT"},
		{withKeys(models.KeyDetected), "SOURCE_VALIDATE"},
		{withKeys(models.KeyDetected, models.KeyValidated), "SOURCE_SAVE"},
	}
	for _, c := range cases {
		item := &models.WorkItem{Type: models.TypeSourceDiscovery, PipelineState: c.state}
		name, fn, err := d.SelectStage(item)
		require.NoError(t, err)
		assert.Equal(t, c.want, name)
		assert.NotNil(t, fn)
	}
}

func TestSelectStageScrapeIsAlwaysSingleStage(t *testing.T) {
	d := NewDispatcher(allStages())
	item := &models.WorkItem{Type: models.TypeScrape, PipelineState: models.PipelineState{}}
	name, fn, err := d.SelectStage(item)
	require.NoError(t, err)
	assert.Equal(t, "SCRAPE_RUN", name)
	assert.NotNil(t, fn)
}

func TestSelectStageRejectsUnknownType(t *testing.T) {
	d := NewDispatcher(allStages())
	item := &models.WorkItem{Type: models.WorkItemType("BOGUS")}
	_, _, err := d.SelectStage(item)
	assert.Error(t, err)
}

func TestDispatchRecoversStagePanicAsFailedStatus(t *testing.T) {
	stages := allStages()
	stages.JobScrape = func(ctx context.Context, item *models.WorkItem) error {
		panic(fmt.Sprintf("boom for %s", item.ID))
	}
	d := NewDispatcher(stages)

	item := &models.WorkItem{ID: "wi-1", Type: models.TypeJob, PipelineState: models.PipelineState{}}
	name, err := d.Dispatch(context.Background(), item)

	assert.Equal(t, "JOB_SCRAPE", name)
	assert.Error(t, err)
	assert.Equal(t, models.StatusFailed, item.Status)
}
