package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/dedup"
	"github.com/jobworker/engine/internal/filter"
	"github.com/jobworker/engine/internal/llm"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/pipeline/company"
	"github.com/jobworker/engine/internal/pipeline/job"
	"github.com/jobworker/engine/internal/pipeline/scraperunner"
	"github.com/jobworker/engine/internal/pipeline/source"
	"github.com/jobworker/engine/internal/queue"
	"github.com/jobworker/engine/internal/rotation"
	"github.com/jobworker/engine/internal/scrapers"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
)

// scrapeClientRPS and aiClientRPS are conservative defaults until a config
// knob exists for them; both clients rate-limit against a single shared
// third party regardless of worker count.
const (
	scrapeClientRPS = 2.0
	aiClientRPS     = 1.0
	scrapeTimeout   = 30 * time.Second
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var files configPaths
	fs.Var(&files, "config", "Configuration file path (repeatable, later files override earlier ones)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	_ = fs.Parse(args)

	cfg, log, err := loadConfig(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	config = cfg
	logger = log

	common.PrintBanner(config, logger)

	db, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aiFactory, err := llm.NewFactory(ctx, config, logger, aiClientRPS)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build AI provider factory")
	}

	httpClient := scrapers.NewClient(scrapeTimeout, scrapeClientRPS)

	dedupCache, err := dedup.NewCache()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build dedup cache")
	}

	filterEngine := filter.New(&config.Filter)
	queueManager := queue.NewManager(db.WorkItems, logger, &config.Queue)

	mdConverter := md.NewConverter("", true, nil)

	jobDeps := &job.Deps{
		HTTPClient: httpClient,
		AI:         aiFactory,
		Filter:     filterEngine,
		Queue:      queueManager,
		Companies:  db.Companies,
		JobMatches: db.JobMatches,
		Config:     &config.AI,
		Logger:     logger,
	}
	companyDeps := &company.Deps{
		HTTPClient:            httpClient,
		AI:                    aiFactory,
		Queue:                 queueManager,
		Companies:             db.Companies,
		Sources:               db.Sources,
		Converter:             mdConverter,
		Logger:                logger,
		RankedSkills:          config.Filter.TechRanks,
		PreferredHQSubstrings: config.Filter.AllowedRegions,
	}
	sourceDeps := &source.Deps{
		HTTPClient: httpClient,
		AI:         aiFactory,
		Sources:    db.Sources,
		Logger:     logger,
	}
	scrapeDeps := &scraperunner.Deps{
		HTTPClient: httpClient,
		Queue:      queueManager,
		Sources:    db.Sources,
		WorkItems:  db.WorkItems,
		JobMatches: db.JobMatches,
		Dedup:      dedupCache,
		Logger:     logger,
	}

	dispatcher := queue.NewDispatcher(queue.Stages{
		JobScrape:  jobDeps.Scrape,
		JobFilter:  jobDeps.Filter,
		JobAnalyze: jobDeps.Analyze,
		JobSave:    jobDeps.Save,

		CompanyFetch:   companyDeps.Fetch,
		CompanyExtract: companyDeps.Extract,
		CompanyAnalyze: companyDeps.Analyze,
		CompanySave:    companyDeps.Save,

		SourceDetect:   sourceDeps.Detect,
		SourceValidate: sourceDeps.Validate,
		SourceSave:     sourceDeps.Save,

		ScrapeRun: scrapeDeps.Run,
	})

	pool := queue.NewWorkerPool(queueManager, dispatcher, &config.Queue, logger)

	scheduler, err := rotation.NewScheduler(
		&config.Scheduler,
		&config.Rotation,
		logger,
		db.Sources.AllEnabled,
		companyTierResolver(db.Companies),
		db.WorkItems.CountRecentScrapesForCompany,
		func(ctx context.Context, src *models.Source) error {
			_, err := queueManager.SubmitScrapeRoot(ctx, src)
			return err
		},
		db.JobMatches.CountSince,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build rotation scheduler")
	}

	pool.Start(config.Server.WorkerCount)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start rotation scheduler")
	}

	logger.Info().Int("workers", config.Server.WorkerCount).Msg("jobworker running - press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(logger)
	scheduler.Stop()
	pool.Stop()
	common.Stop()
}

// companyTierResolver adapts CompanyStore.Get to rotation.TierLookup's
// synchronous, error-free signature; a company that can't be found or
// loaded ranks as the lowest tier rather than blocking the sort.
func companyTierResolver(companies *badgerstore.CompanyStore) func(string) models.Tier {
	return func(companyRef string) models.Tier {
		if companyRef == "" {
			return models.TierD
		}
		c, err := companies.Get(context.Background(), companyRef)
		if err != nil {
			return models.TierD
		}
		return c.PriorityTier
	}
}
