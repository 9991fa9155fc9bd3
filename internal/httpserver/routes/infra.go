package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
	"github.com/MrSnakeDoc/singme/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/singme/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

	r.Get("/healthz", handlers.Healthz(d))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Handle("/metrics", d.Metrics.Handler())
}
