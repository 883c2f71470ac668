package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadscout_backend/internal/analysis"
	analysishandler "leadscout_backend/internal/analysis/handler"
	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/config"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/http/router"
	"leadscout_backend/internal/leadscore"
	leadhandler "leadscout_backend/internal/leadscore/handler"
	"leadscout_backend/internal/leadscore/repository"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	resultCache, err := cache.New(cfg.RedisURL, cfg.CacheTTL, log)
	if err != nil {
		log.Error("failed to initialize cache", "error", err)
		panic("failed to initialize cache: " + err.Error())
	}
	if cfg.RedisURL == "" {
		log.Warn("redis url not configured, caching disabled")
	}

	// The lead database is optional: deployments without one still serve
	// location analysis and inline lead scoring.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		log.Info("database connection established")
	} else {
		log.Warn("database url not configured, lead lookup disabled")
	}

	val := validator.New()

	// The task client shares the cache redis. Without it the refresh and
	// rescore endpoints return 503 while everything else keeps working.
	var refreshTasks analysishandler.RefreshScheduler
	var rescoreTasks leadhandler.RescoreScheduler
	if cfg.RedisURL != "" {
		taskClient, err := scheduler.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to initialize task client", "error", err)
			panic("failed to initialize task client: " + err.Error())
		}
		defer taskClient.Close()
		refreshTasks = taskClient
		rescoreTasks = taskClient
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	analysisModule := analysis.NewModule(cfg, resultCache, log)
	analysisModule.Wire(analysishandler.New(analysisModule.Service(), val, refreshTasks))

	var leadSource leadscore.LeadSource
	if pool != nil {
		leadSource = repository.New(pool)
	}
	leadModule := leadscore.NewModule(leadSource, resultCache, leadscore.WeightsFromConfig(cfg.LeadScoreWeights))
	leadModule.Wire(leadhandler.New(leadModule.Service(), val, rescoreTasks))

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Modules: []apphttp.Module{analysisModule, leadModule},
	}
	if pool != nil {
		app.Health = pool
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
