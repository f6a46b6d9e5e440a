package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/jobs"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/models/dtos/responses"
)

// JobRunner is the scheduled airport sync job as seen by the admin API.
type JobRunner interface {
	Run(ctx context.Context) (*jobs.RunSummary, error)
	LastRun() *jobs.RunSummary
}

// JobsHandler handles manual job triggering endpoints
type JobsHandler struct {
	job JobRunner
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(job JobRunner) *JobsHandler {
	return &JobsHandler{job: job}
}

// TriggerAirportSync handles POST /api/v1/admin/airports/jobs/sync
func (h *JobsHandler) TriggerAirportSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		logging.Info("[JobsHandler] Airport sync manually triggered", "subject", adminSubject(r))

		summary, err := h.job.Run(r.Context())
		if errors.Is(err, jobs.ErrJobRunning) {
			common.RespondError(w, initTime, nil, err.Error(), false, http.StatusConflict)
			return
		}
		if err != nil {
			common.RespondError(w, initTime, nil, "Failed to run airport sync", false, http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Message: "Airport sync completed",
			Data:    summary,
		})
	}
}

// GetJobStatus handles GET /api/v1/admin/airports/jobs/status
func (h *JobsHandler) GetJobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		last := h.job.LastRun()
		if last == nil {
			common.RespondSuccess(w, initTime, responses.APIResponse{Message: "Airport sync has not run yet"})
			return
		}
		common.RespondSuccess(w, initTime, responses.APIResponse{Message: "Job status retrieved", Data: last})
	}
}
