package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/config"
	"leadscout_backend/internal/leadscore"
	"leadscout_backend/internal/leadscore/repository"
	"leadscout_backend/platform/logger"
)

const batchSize = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead score backfill")

	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL is required for the backfill")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)

	// The backfill bypasses the cache on purpose: a nil redis URL cache
	// computes fresh every time, and scores are persisted to the lead rows.
	resultCache, err := cache.New("", cfg.CacheTTL, log)
	if err != nil {
		panic("failed to initialize cache: " + err.Error())
	}
	svc := leadscore.NewService(repo, resultCache, leadscore.WeightsFromConfig(cfg.LeadScoreWeights))

	var (
		cursor  uuid.UUID
		scored  int
		failed  int
		started = time.Now()
	)

	for {
		ids, err := repo.ListPage(ctx, cursor, batchSize)
		if err != nil {
			log.Error("failed to list leads", "error", err)
			return
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			lead, err := repo.Read(ctx, id)
			if err != nil {
				log.Error("failed to read lead", "leadId", id, "error", err)
				failed++
				continue
			}

			result, err := svc.ScoreLead(lead, nil)
			if err != nil {
				log.Error("failed to score lead", "leadId", id, "error", err)
				failed++
				continue
			}

			if err := repo.WriteScore(ctx, result); err != nil {
				log.Error("failed to write score", "leadId", id, "error", err)
				failed++
				continue
			}
			scored++
		}

		cursor = ids[len(ids)-1]
		log.Info("batch complete", "scored", scored, "failed", failed)
	}

	log.Info("lead score backfill finished",
		"scored", scored,
		"failed", failed,
		"elapsed", time.Since(started).String(),
	)
}
