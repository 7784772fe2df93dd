package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dispatch-console/backend/internal/analytics"
	"github.com/dispatch-console/backend/internal/api/middleware"
	"github.com/dispatch-console/backend/internal/dashboard"
	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/storage"
	"github.com/dispatch-console/backend/internal/storage/models"
)

// SettingsResponse represents console settings in API responses.
type SettingsResponse struct {
	ActiveCity  string `json:"active_city"`
	Granularity string `json:"granularity"`
	StartDate   string `json:"start_date"`
}

// GetSettings returns the persisted console settings.
func GetSettings(repo *storage.SettingsRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := repo.Load(r.Context(), models.Settings{
			Granularity: string(analytics.Monthly),
		})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load settings")
			return
		}

		response := SettingsResponse{
			ActiveCity:  settings.ActiveCity,
			Granularity: settings.Granularity,
			StartDate:   settings.StartDate,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// UpdateSettings persists console settings and pushes them into the running
// synchronizer and dashboard so the change takes effect without a restart.
func UpdateSettings(repo *storage.SettingsRepository, sync *dispatch.Synchronizer, ctrl *dashboard.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Granularity != "" {
			if _, err := analytics.ParseGranularity(req.Granularity); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
				return
			}
		}
		if req.StartDate != "" {
			if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start_date must be yyyy-MM-dd")
				return
			}
		}

		current, err := repo.Load(r.Context(), models.Settings{
			Granularity: string(analytics.Monthly),
		})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load settings")
			return
		}

		if req.ActiveCity != "" {
			current.ActiveCity = req.ActiveCity
		}
		if req.Granularity != "" {
			current.Granularity = req.Granularity
		}
		if req.StartDate != "" {
			current.StartDate = req.StartDate
		}

		if err := repo.Save(r.Context(), current); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save settings")
			return
		}

		// Apply to the running services
		if req.ActiveCity != "" {
			sync.SetCity(req.ActiveCity)
		}
		if err := ctrl.SetParams(dashboard.Params{
			City:        req.ActiveCity,
			Granularity: analytics.Granularity(req.Granularity),
			StartDate:   req.StartDate,
		}); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		response := SettingsResponse{
			ActiveCity:  current.ActiveCity,
			Granularity: current.Granularity,
			StartDate:   current.StartDate,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
