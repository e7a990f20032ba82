package queue

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
)

// StageFunc executes one pipeline stage against item, mutating its
// PipelineState and, for a terminal outcome, its Status. It must never
// panic across this boundary in normal operation; Dispatcher.Dispatch
// recovers a panic defensively and converts it to a FAILED status so a
// single bad stage can never take down the worker loop.
//
// A non-nil return is a stage failure; the worker loop fails the item at
// once for a Permanent or InvariantViolation errkind and otherwise retries
// it within MaxRetries. A StageFunc that
// wants to reach FILTERED/SKIPPED sets item.Status itself and returns nil.
type StageFunc func(ctx context.Context, item *models.WorkItem) error

// Stages is the full table of stage implementations, supplied by
// internal/pipeline/* at wiring time. Exactly one entry is invoked per
// Dispatch call, chosen purely from (item.Type, item.PipelineState).
type Stages struct {
	JobScrape   StageFunc
	JobFilter   StageFunc
	JobAnalyze  StageFunc
	JobSave     StageFunc

	CompanyFetch   StageFunc
	CompanyExtract StageFunc
	CompanyAnalyze StageFunc
	CompanySave    StageFunc

	SourceDetect   StageFunc
	SourceValidate StageFunc
	SourceSave     StageFunc

	ScrapeRun StageFunc
}

type Dispatcher struct {
	stages Stages
}

func NewDispatcher(stages Stages) *Dispatcher {
	return &Dispatcher{stages: stages}
}

// SelectStage is the pure (type, pipeline_state) -> stage-name function
// driving routing. It is exported separately from Dispatch so tests can
// assert every reachable state maps to exactly one stage without
// executing any stage.
func (d *Dispatcher) SelectStage(item *models.WorkItem) (string, StageFunc, error) {
	switch item.Type {
	case models.TypeJob:
		switch {
		case !item.PipelineState.Has(models.KeyJobData):
			return "JOB_SCRAPE", d.stages.JobScrape, nil
		case !item.PipelineState.Has(models.KeyFilterResult):
			return "JOB_FILTER", d.stages.JobFilter, nil
		case !item.PipelineState.Has(models.KeyMatchResult):
			return "JOB_ANALYZE", d.stages.JobAnalyze, nil
		default:
			return "JOB_SAVE", d.stages.JobSave, nil
		}

	case models.TypeCompany:
		switch {
		case !item.PipelineState.Has(models.KeyRawPages):
			return "COMPANY_FETCH", d.stages.CompanyFetch, nil
		case !item.PipelineState.Has(models.KeyExtracted):
			return "COMPANY_EXTRACT", d.stages.CompanyExtract, nil
		case !item.PipelineState.Has(models.KeyAnalysis):
			return "COMPANY_ANALYZE", d.stages.CompanyAnalyze, nil
		default:
			return "COMPANY_SAVE", d.stages.CompanySave, nil
		}

	case models.TypeSourceDiscovery:
		switch {
		case !item.PipelineState.Has(models.KeyDetected):
			return "SOURCE_DETECT", d.stages.SourceDetect, nil
		case !item.PipelineState.Has(models.KeyValidated):
			return "SOURCE_VALIDATE", d.stages.SourceValidate, nil
		default:
			return "SOURCE_SAVE", d.stages.SourceSave, nil
		}

	case models.TypeScrape:
		return "SCRAPE_RUN", d.stages.ScrapeRun, nil

	default:
		return "", nil, fmt.Errorf("dispatcher: unknown work item type %q", item.Type)
	}
}

// Dispatch selects and invokes exactly one stage for item.
func (d *Dispatcher) Dispatch(ctx context.Context, item *models.WorkItem) (stageName string, err error) {
	name, fn, err := d.SelectStage(item)
	if err != nil {
		return "", err
	}
	if fn == nil {
		return name, fmt.Errorf("dispatcher: no handler registered for stage %s", name)
	}

	defer func() {
		if r := recover(); r != nil {
			item.Status = models.StatusFailed
			item.Error = fmt.Sprintf("panic in stage %s: %v", name, r)
			err = errkind.Permanentf("stage %s panicked: %v", name, r)
		}
	}()

	return name, fn(ctx, item)
}
