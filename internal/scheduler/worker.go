package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"leadscout_backend/internal/analysis"
	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/leadscore"
	"leadscout_backend/platform/logger"
)

const defaultConcurrency = 10

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	analysis *analysis.Service
	leads    *leadscore.Service
	log      *logger.Logger
}

func NewWorker(redisURL string, analysisSvc *analysis.Service, leadsSvc *leadscore.Service, log *logger.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: defaultConcurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		analysis: analysisSvc,
		leads:    leadsSvc,
		log:      log,
	}

	mux.HandleFunc(TaskAnalysisRefresh, w.handleAnalysisRefresh)
	mux.HandleFunc(TaskLeadRescore, w.handleLeadRescore)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleAnalysisRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAnalysisRefreshPayload(task)
	if err != nil {
		return err
	}

	center := geo.Coordinates{Latitude: payload.Latitude, Longitude: payload.Longitude}
	result, err := w.analysis.Refresh(ctx, center, payload.RadiusMiles)
	if err != nil {
		return err
	}

	w.log.Info("analysis cache refreshed",
		"latitude", payload.Latitude,
		"longitude", payload.Longitude,
		"opportunity", result.Opportunity.Level,
	)
	return nil
}

func (w *Worker) handleLeadRescore(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadRescorePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	w.leads.Invalidate(ctx, leadID)
	result, err := w.leads.ScoreByID(ctx, leadID, nil)
	if err != nil {
		return err
	}

	w.log.Info("lead rescored", "leadId", leadID, "score", result.Score, "category", result.Category)
	return nil
}
