package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/singme/internal/fixtures"
	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
	"github.com/MrSnakeDoc/singme/internal/logger"
)

type populateResponse struct {
	Inserted int `json:"inserted"`
}

// ResetDatabase empties the recommendations table for an e2e run.
func ResetDatabase(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Scenario.Reset(r.Context()); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		d.Logger.Info("e2e reset triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusCreated)
	}
}

// PopulateDatabase seeds generated recommendations for an e2e run.
func PopulateDatabase(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fixtures.PopulateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		recs, err := d.Scenario.Populate(r.Context(), req)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, populateResponse{Inserted: len(recs)})
	}
}
