package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/model"
)

// CitiesResponse lists the serviced cities and the active one.
type CitiesResponse struct {
	Cities []string `json:"cities"`
	Active string   `json:"active"`
}

// ListCities returns the serviced city list.
func ListCities(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := CitiesResponse{
			Cities: sync.Cities(),
			Active: sync.City(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// ListLiners returns the liner roster for the active city with each
// liner's palette color.
func ListLiners(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		liners := sync.Liners()
		colors := sync.ColorMap()

		type linerWithColor struct {
			ID           string `json:"id"`
			FullName     string `json:"full_name"`
			BusinessName string `json:"business_name"`
			City         string `json:"city"`
			Color        string `json:"color"`
		}

		out := make([]linerWithColor, 0, len(liners))
		for _, l := range liners {
			out = append(out, linerWithColor{
				ID:           l.ID,
				FullName:     l.FullName,
				BusinessName: l.BusinessName,
				City:         l.City,
				Color:        colors[l.ID],
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

// ListCollectors returns the live collector positions for the active city.
func ListCollectors(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sync.Collectors())
	}
}

// LinerProgress returns the per-liner tallies for the sidebar, each with
// its derived completion ratio.
func LinerProgress(sync *dispatch.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progress := sync.Progress()

		type progressWithRatio struct {
			model.LinerProgress
			CompletionRatio float64 `json:"completion_ratio"`
		}

		out := make([]progressWithRatio, 0, len(progress))
		for _, p := range progress {
			out = append(out, progressWithRatio{
				LinerProgress:   p,
				CompletionRatio: p.CompletionRatio(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
