package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
	"github.com/MrSnakeDoc/singme/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/singme/internal/httpserver/mw"
)

func init() { Register(registerE2E) }

// registerE2E mounts the scenario routes only when a Scenario is wired,
// which the app does in the test environment alone.
func registerE2E(r chi.Router, d deps.Deps) {
	if d.Scenario == nil {
		return
	}
	r.Route("/e2e", func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Post("/reset", handlers.ResetDatabase(d))
		r.Post("/populate", handlers.PopulateDatabase(d))
	})
}
