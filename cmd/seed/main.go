package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/app"
	"github.com/Ayash-Bera/campusqa/internal/config"
	"github.com/Ayash-Bera/campusqa/internal/seeder"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

// Command line flags
var (
	faqFile            = flag.String("file", "", "YAML file of FAQ questions to seed")
	reclassify         = flag.Bool("reclassify", false, "Run every question through the classifier again")
	onlyKeyword        = flag.Bool("only-keyword", false, "With -reclassify, only revisit keyword-classified questions")
	pruneNotifications = flag.Bool("prune-notifications", false, "Delete notifications older than the retention period")
	dryRun             = flag.Bool("dry-run", false, "Report what would change without writing")
	verbose            = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLoggerWithLevel(cfg.LogLevel)
	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *faqFile == "" && !*reclassify && !*pruneNotifications {
		flag.Usage()
		log.Fatal("Nothing to do: pass -file, -reclassify or -prune-notifications")
	}
	if *onlyKeyword && !*reclassify {
		log.Fatal("-only-keyword requires -reclassify")
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	s := seeder.New(application.Repos, application.Questions, application.Classifier, application.Notifications, logger, *dryRun)
	ctx := context.Background()

	if *faqFile != "" {
		file, err := seeder.LoadFAQFile(*faqFile)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load FAQ file")
		}
		stats, err := s.SeedFAQs(ctx, file)
		if err != nil {
			logger.WithError(err).Fatal("FAQ seeding failed")
		}
		logger.WithFields(logrus.Fields{
			"scanned": stats.Scanned,
			"created": stats.Created,
			"updated": stats.Updated,
			"skipped": stats.Skipped,
			"dry_run": *dryRun,
		}).Info("FAQ seeding completed")
	}

	if *reclassify {
		if !application.Classifier.RemoteEnabled() {
			logger.Warn("No LLM configured, reclassification uses keywords only")
		}
		stats, err := s.Reclassify(ctx, *onlyKeyword)
		if err != nil {
			logger.WithError(err).Fatal("Reclassification failed")
		}
		logger.WithFields(logrus.Fields{
			"scanned":      stats.Scanned,
			"changed":      stats.Updated,
			"unchanged":    stats.Skipped,
			"only_keyword": *onlyKeyword,
			"dry_run":      *dryRun,
		}).Info("Reclassification completed")
	}

	if *pruneNotifications {
		deleted, err := s.PruneNotifications(ctx, cfg.Notifications.Retention)
		if err != nil {
			logger.WithError(err).Fatal("Notification pruning failed")
		}
		logger.WithField("deleted", deleted).Info("Notification pruning completed")
	}
}
