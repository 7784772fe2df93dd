package handlers

import (
	"fmt"
	"net/http"

	"github.com/dispatch-console/backend/internal/api/middleware"
	"github.com/dispatch-console/backend/internal/report"
)

// DailyReport renders today's dispatch summary as a downloadable PDF.
func DailyReport(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, filename, err := svc.GenerateDaily()
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to generate report")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Write(data)
	}
}
