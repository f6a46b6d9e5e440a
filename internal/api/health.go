package api

import (
	"encoding/json"
	"net/http"
	"time"

	"travelbook/airports/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]entities.ServiceStatus)

		dbStatus := "ok"
		dbDetails := "Database Connected"
		if h.deps.DB == nil {
			dbStatus = "down"
			dbDetails = "no database handle"
		} else if err := h.deps.DB.PingContext(r.Context()); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		}
		services["database"] = entities.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  h.deps.UpSince,
			Uptime:   time.Since(h.deps.UpSince).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		if overallStatus != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
