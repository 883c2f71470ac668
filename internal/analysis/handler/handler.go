// Package handler exposes the analysis HTTP endpoints. Handlers shuttle
// between DTOs and the analysis service and hold no business logic.
package handler

import (
	"context"
	"net/http"
	"time"

	"leadscout_backend/internal/analysis"
	"leadscout_backend/internal/analysis/transport"
	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/platform/httpkit"
	"leadscout_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// RefreshScheduler enqueues deferred cache refreshes. Satisfied by
// scheduler.Client; nil when no task queue is configured.
type RefreshScheduler interface {
	ScheduleAnalysisRefresh(ctx context.Context, payload scheduler.AnalysisRefreshPayload, runAt time.Time) error
}

type Handler struct {
	svc   *analysis.Service
	val   *validator.Validator
	tasks RefreshScheduler
}

func New(svc *analysis.Service, val *validator.Validator, tasks RefreshScheduler) *Handler {
	return &Handler{svc: svc, val: val, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/location", h.AnalyzeLocation)
	rg.POST("/refresh", h.ScheduleRefresh)
}

var _ analysis.RouteRegistrar = (*Handler)(nil)

// AnalyzeLocation runs the factor analysis for a coordinate or address.
func (h *Handler) AnalyzeLocation(c *gin.Context) {
	var req transport.LocationAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	svcReq := analysis.Request{
		Address:     req.Address,
		RadiusMiles: req.RadiusMiles,
		Factors:     req.Factors,
	}
	if req.HasCoordinates() {
		svcReq.Location = &geo.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	result, err := h.svc.Analyze(c.Request.Context(), svcReq)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// ScheduleRefresh enqueues a background recompute of a cached analysis.
func (h *Handler) ScheduleRefresh(c *gin.Context) {
	if h.tasks == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "task queue not configured", nil)
		return
	}

	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	payload := scheduler.AnalysisRefreshPayload{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusMiles: req.RadiusMiles,
	}
	runAt := time.Now().Add(time.Duration(req.DelaySeconds) * time.Second)
	if err := h.tasks.ScheduleAnalysisRefresh(c.Request.Context(), payload, runAt); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
