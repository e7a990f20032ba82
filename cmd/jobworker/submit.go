package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/queue"
	badgerstore "github.com/jobworker/engine/internal/storage/badger"
)

// runSubmit inserts one externally submitted work item with only
// {type, url} and the engine-computed lineage defaults, without starting
// the worker pool or scheduler.
func runSubmit(args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var files configPaths
	fs.Var(&files, "config", "Configuration file path (repeatable, later files override earlier ones)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	itemType := fs.String("type", "", "Work item type: job, company, source, source_discovery, scrape")
	url := fs.String("url", "", "URL to submit")
	_ = fs.Parse(args)

	if *url == "" {
		fmt.Fprintln(os.Stderr, "submit: -url is required")
		os.Exit(1)
	}
	wt, err := parseWorkItemType(*itemType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: %v\n", err)
		os.Exit(1)
	}

	cfg, log, err := loadConfig(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	config = cfg
	logger = log

	db, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("submit: failed to open storage")
	}
	defer db.Close()

	queueManager := queue.NewManager(db.WorkItems, logger, &config.Queue)

	item, err := queueManager.SubmitRoot(context.Background(), wt, *url)
	if err != nil {
		logger.Fatal().Err(err).Msg("submit: failed to submit work item")
	}

	logger.Info().Str("item_id", item.ID).Str("type", string(item.Type)).Str("url", item.URL).Msg("submitted root work item")
	fmt.Printf("submitted %s (%s)\n", item.ID, item.Type)
}

func parseWorkItemType(s string) (models.WorkItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "job":
		return models.TypeJob, nil
	case "company":
		return models.TypeCompany, nil
	case "source", "source_discovery":
		return models.TypeSourceDiscovery, nil
	case "scrape":
		return models.TypeScrape, nil
	default:
		return "", fmt.Errorf("unknown work item type %q (want job, company, source_discovery, or scrape)", s)
	}
}
