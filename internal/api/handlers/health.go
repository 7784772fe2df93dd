// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/storage"
	"github.com/dispatch-console/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connection
		dbConnected := db.Ping() == nil

		// Determine overall status
		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	ActiveCity       string                  `json:"active_city"`
	ConnectedClients int                     `json:"connected_clients"`
	Resources        []dispatch.ResourceView `json:"resources"`
	JournalEntries   int                     `json:"journal_entries"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Count journaled writes
		var journalEntries int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM write_journal").Scan(&journalEntries)

		response := StatusResponse{
			ActiveCity:       sync.City(),
			ConnectedClients: hub.ClientCount(),
			Resources:        sync.ResourceViews(),
			JournalEntries:   journalEntries,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
