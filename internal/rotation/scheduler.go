package rotation

import (
	"context"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Enqueuer creates a SCRAPE work item for a chosen source. Implemented by
// queue.Manager.SubmitScrapeRoot in the running system.
type Enqueuer func(ctx context.Context, source *models.Source) error

// MatchCounter reports fresh job-match documents produced since 'since',
// used to stop requesting new batches once scheduler.target_matches is hit
// for the current cycle.
type MatchCounter func(ctx context.Context, since time.Time) (int, error)

// SourceLister and TierResolver are the store-backed collaborators Scheduler
// needs; kept as narrow function types rather than full store interfaces so
// tests can supply fakes without a Badger harness.
type SourceLister func(ctx context.Context) ([]*models.Source, error)
type TierResolver func(companyRef string) models.Tier

// Scheduler runs the rotation tick on a robfig/cron schedule, gated by the
// configured daytime window and timezone, following the same
// cron.Cron-driven scheduler service shape used elsewhere in this codebase.
type Scheduler struct {
	cfg      *common.SchedulerConfig
	rotCfg   *common.RotationConfig
	logger   arbor.ILogger
	cron     *cron.Cron
	loc      *time.Location

	listSources SourceLister
	tierOf      TierResolver
	countScrapes ScrapeCounter
	enqueue     Enqueuer
	countMatches MatchCounter

	cycleStart time.Time
}

func NewScheduler(
	cfg *common.SchedulerConfig,
	rotCfg *common.RotationConfig,
	logger arbor.ILogger,
	listSources SourceLister,
	tierOf TierResolver,
	countScrapes ScrapeCounter,
	enqueue Enqueuer,
	countMatches MatchCounter,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cfg: cfg, rotCfg: rotCfg, logger: logger,
		cron: cron.New(), loc: loc,
		listSources: listSources, tierOf: tierOf,
		countScrapes: countScrapes, enqueue: enqueue, countMatches: countMatches,
	}, nil
}

// Start registers the periodic tick and begins running it; returns
// immediately, the cron scheduler runs in its own goroutine.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("rotation scheduler disabled")
		return nil
	}
	s.cycleStart = time.Now()

	_, err := s.cron.AddFunc(s.cfg.CronExpr, s.tick)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("cron", s.cfg.CronExpr).Str("timezone", s.cfg.Timezone).Msg("rotation scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	hour := time.Now().In(s.loc).Hour()
	if hour < s.cfg.DaytimeHours.Start || hour >= s.cfg.DaytimeHours.End {
		s.logger.Debug().Int("hour", hour).Msg("rotation tick outside daytime window, skipping")
		return
	}

	matches, err := s.countMatches(ctx, s.cycleStart)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count cycle matches")
	} else if matches >= s.cfg.TargetMatches {
		s.logger.Debug().Int("matches", matches).Msg("target matches reached for cycle, re-arming")
		s.cycleStart = time.Now()
		return
	}

	sources, err := s.listSources(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list enabled sources")
		return
	}

	chosen, err := Rank(ctx, sources, s.cfg.MaxSources, s.rotCfg.MaxConsecutiveFailures, s.rotCfg.FairnessWindowDays, s.countScrapes, s.tierOf)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to rank sources")
		return
	}

	for _, src := range chosen {
		if err := s.enqueue(ctx, src); err != nil {
			s.logger.Warn().Err(err).Str("source_id", src.ID).Msg("failed to enqueue scrape for rotated source")
		}
	}
	s.logger.Info().Int("count", len(chosen)).Msg("rotation tick enqueued scrapes")
}
