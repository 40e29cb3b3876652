package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/api"
	"github.com/Ayash-Bera/campusqa/internal/app"
	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/config"
	"github.com/Ayash-Bera/campusqa/internal/health"
	"github.com/Ayash-Bera/campusqa/internal/middleware"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

func main() {
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
	gin.SetMode(cfg.Server.Mode)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}
	defer application.Close()

	// an unset secret leaves the verifier interface nil, not a typed nil
	var verifier middleware.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		v, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			logger.WithError(err).Fatal("Invalid auth configuration")
		}
		verifier = v
	} else if !cfg.DemoMode {
		logger.Warn("No JWT secret and demo mode off, every caller is anonymous")
	}
	if cfg.DemoMode {
		logger.Warn("Demo mode is on, X-Demo-* headers are trusted")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
	go limiter.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Questions:      application.Questions,
		Answers:        application.Answers,
		FollowUps:      application.FollowUps,
		Search:         application.Search,
		Community:      application.Community,
		Notifications:  application.Notifications,
		Dashboard:      application.Dashboard,
		Health:         health.NewHealthChecker(logger, application.HealthChecks()...),
		Verifier:       verifier,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DemoMode:       cfg.DemoMode,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      srv.Addr,
			"driver":    application.DB.Driver(),
			"llm":       application.Classifier.RemoteEnabled(),
			"demo_mode": cfg.DemoMode,
		}).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
