// Package handler exposes the lead scoring HTTP endpoints.
package handler

import (
	"context"
	"net/http"

	"leadscout_backend/internal/leadscore"
	"leadscout_backend/internal/leadscore/transport"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/platform/httpkit"
	"leadscout_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// RescoreScheduler enqueues background rescores. Satisfied by
// scheduler.Client; nil when no task queue is configured.
type RescoreScheduler interface {
	ScheduleLeadRescore(ctx context.Context, payload scheduler.LeadRescorePayload) error
}

type Handler struct {
	svc   *leadscore.Service
	val   *validator.Validator
	tasks RescoreScheduler
}

func New(svc *leadscore.Service, val *validator.Validator, tasks RescoreScheduler) *Handler {
	return &Handler{svc: svc, val: val, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/score", h.ScoreByID)
	rg.POST("/score", h.ScoreInline)
	rg.POST("/:id/rescore", h.Rescore)
}

// ScoreByID scores a persisted lead, served from cache when warm.
func (h *Handler) ScoreByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ScoreByID(c.Request.Context(), id, nil)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// ScoreInline scores a lead snapshot supplied in the request body.
func (h *Handler) ScoreInline(c *gin.Context) {
	var req transport.InlineScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead := toRecord(req.Lead)
	result, err := h.svc.ScoreLead(lead, req.Weights)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// Rescore drops the cached score for a lead and enqueues a recompute.
func (h *Handler) Rescore(c *gin.Context) {
	if h.tasks == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "task queue not configured", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	payload := scheduler.LeadRescorePayload{LeadID: id.String()}
	if err := h.tasks.ScheduleLeadRescore(c.Request.Context(), payload); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func toRecord(in transport.InlineLead) *leadscore.LeadRecord {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		id = uuid.Nil
	}

	return &leadscore.LeadRecord{
		ID:                 id,
		PhoneNumbers:       in.PhoneNumbers,
		Email:              in.Email,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Address:            in.Address,
		AddressVerified:    in.AddressVerified,
		State:              in.State,
		County:             in.County,
		VerificationStatus: in.VerificationStatus,
		OwnershipVerified:  in.OwnershipVerified,
		RawImportFields:    in.RawImportFields,
	}
}
