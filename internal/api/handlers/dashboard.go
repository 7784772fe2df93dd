package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dispatch-console/backend/internal/api/middleware"
	"github.com/dispatch-console/backend/internal/dashboard"
)

// GetDashboard returns the full dashboard summary built from the cached
// metric records and current parameters.
func GetDashboard(ctrl *dashboard.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ctrl.Summary())
	}
}

// UpdateDashboardParams applies new dashboard parameters. Unset fields keep
// their current values; the response carries the recomputed summary.
func UpdateDashboardParams(ctrl *dashboard.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params dashboard.Params
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := ctrl.SetParams(params); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ctrl.Summary())
	}
}
