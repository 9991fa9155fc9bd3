package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
	"github.com/MrSnakeDoc/singme/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/singme/internal/httpserver/mw"
)

func init() { Register(registerRecommendations) }

func registerRecommendations(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(d.Limiter, d.TrustProxy, d.Logger)

	r.Route("/recommendations", func(r chi.Router) {
		r.With(limit).Post("/", handlers.CreateRecommendation(d))
		r.Get("/", handlers.RecentRecommendations(d))
		r.Get("/random", handlers.RandomRecommendation(d))
		r.Get("/top/{amount}", handlers.TopRecommendations(d))
		r.Get("/{id}", handlers.GetRecommendation(d))
		r.With(limit).Post("/{id}/upvote", handlers.Upvote(d))
		r.With(limit).Post("/{id}/downvote", handlers.Downvote(d))
	})
}
