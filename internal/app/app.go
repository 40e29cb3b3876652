// Package app wires storage, the classifier and the domain services from
// configuration. Both the API server and the seed tool start here.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/config"
	"github.com/Ayash-Bera/campusqa/internal/database"
	"github.com/Ayash-Bera/campusqa/internal/health"
	"github.com/Ayash-Bera/campusqa/internal/llm"
	"github.com/Ayash-Bera/campusqa/internal/migration"
	"github.com/Ayash-Bera/campusqa/internal/repository"
	"github.com/Ayash-Bera/campusqa/internal/services"
)

type App struct {
	DB         *database.Manager
	Repos      *repository.RepositoryManager
	LLM        *llm.Service
	Classifier *classifier.Classifier

	Questions     *services.QuestionService
	Answers       *services.AnswerService
	FollowUps     *services.FollowUpService
	Search        *services.SearchService
	Community     *services.CommunityService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
}

// New connects to the database (and Redis when configured), runs
// migrations and builds every service. Without an LLM key the classifier
// runs on keywords alone.
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	dbManager, err := database.NewManager(&database.Config{
		Driver:      cfg.Database.Driver,
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Migrations.Path); err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	a := &App{
		DB:    dbManager,
		Repos: repository.NewRepositoryManager(dbManager.DB),
	}

	// a nil interface, not a typed nil, keeps the classifier on keywords
	var remote classifier.Remote
	if cfg.LLMEnabled() {
		if err := cfg.ValidateLLM(); err != nil {
			dbManager.Close()
			return nil, err
		}
		a.LLM = llm.NewService(llm.NewClient(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger), logger)
		remote = a.LLM
	} else {
		logger.Warn("No LLM key configured, questions will be classified by keywords only")
	}

	var cache classifier.Cache
	if dbManager.Redis != nil {
		cache = classifier.NewRedisCache(dbManager.Redis, logger)
	}
	a.Classifier = classifier.New(remote, cache, classifier.Options{
		TTL:           cfg.Classifier.CacheTTL,
		MinConfidence: cfg.Classifier.MinConfidence,
	}, logger)

	counters := services.NewCounters(a.Repos.Counter, logger)
	a.Notifications = services.NewNotificationService(a.Repos.Notification, cfg.Notifications.DedupWindow, logger)
	a.Questions = services.NewQuestionService(a.Repos, a.Classifier, counters, a.Notifications, logger)
	a.Answers = services.NewAnswerService(a.Repos, counters, a.Notifications, a.Questions, logger)
	a.FollowUps = services.NewFollowUpService(a.Repos, logger)
	a.Community = services.NewCommunityService(a.Repos, counters, a.Notifications, logger)
	a.Search = services.NewSearchService(dbManager.DB, dbManager.Driver(), a.Questions, a.Community, logger)
	a.Dashboard = services.NewDashboardService(a.Repos, logger)

	return a, nil
}

// HealthChecks lists the dependencies /health reports on. The database is
// required; Redis and the LLM only degrade the service.
func (a *App) HealthChecks() []health.Check {
	checks := []health.Check{
		{Name: "database", Pinger: health.PingFunc(a.DB.PingDatabase)},
		{Name: "redis", Optional: true},
		{Name: "llm", Optional: true},
	}
	if a.DB.Redis != nil {
		checks[1].Pinger = health.PingFunc(a.DB.PingRedis)
	}
	if a.LLM != nil {
		checks[2].Pinger = health.PingFunc(a.LLM.Ping)
	}
	return checks
}

func (a *App) Close() error {
	return a.DB.Close()
}
