package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadscout_backend/internal/analysis"
	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/config"
	"leadscout_backend/internal/leadscore"
	"leadscout_backend/internal/leadscore/repository"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resultCache, err := cache.New(cfg.RedisURL, cfg.CacheTTL, log)
	if err != nil {
		log.Error("failed to initialize cache", "error", err)
		panic("failed to initialize cache: " + err.Error())
	}

	var leadSource leadscore.LeadSource
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		leadSource = repository.New(pool)
	}

	analysisModule := analysis.NewModule(cfg, resultCache, log)
	leadService := leadscore.NewService(leadSource, resultCache, leadscore.WeightsFromConfig(cfg.LeadScoreWeights))

	worker, err := scheduler.NewWorker(cfg.RedisURL, analysisModule.Service(), leadService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler worker stopped")
}
