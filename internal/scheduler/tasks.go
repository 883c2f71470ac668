package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAnalysisRefresh = "analysis.refresh"

const TaskLeadRescore = "leads.rescore"

// AnalysisRefreshPayload identifies a coordinate whose cached analysis
// should be recomputed before it expires.
type AnalysisRefreshPayload struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusMiles float64 `json:"radiusMiles"`
}

// LeadRescorePayload identifies a lead whose cached score should be
// invalidated and recomputed.
type LeadRescorePayload struct {
	LeadID string `json:"leadId"`
}

func NewAnalysisRefreshTask(payload AnalysisRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalysisRefresh, data), nil
}

func ParseAnalysisRefreshPayload(task *asynq.Task) (AnalysisRefreshPayload, error) {
	var payload AnalysisRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AnalysisRefreshPayload{}, err
	}
	return payload, nil
}

func NewLeadRescoreTask(payload LeadRescorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRescore, data), nil
}

func ParseLeadRescorePayload(task *asynq.Task) (LeadRescorePayload, error) {
	var payload LeadRescorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadRescorePayload{}, err
	}
	return payload, nil
}
