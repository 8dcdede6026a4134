// Package api sets up and starts the HTTP server the chat platform
// delivers updates to.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KobaLuck/recipe-bot/internal/api/middleware"
	"github.com/KobaLuck/recipe-bot/internal/api/routes/ping"
	"github.com/KobaLuck/recipe-bot/internal/api/routes/webhook"
	"github.com/KobaLuck/recipe-bot/internal/env"
)

func addRoutes(router *chi.Mux, environment *env.Env) {
	wh := &webhook.Handler{
		Engine: environment.Engine,
		Logger: environment.Logger,
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.HandlePing)
		r.Post("/webhook", wh.HandleUpdate)
	})
}

// Start blocks serving the API until the listener fails.
func Start(environment *env.Env) error {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(environment.Logger))

	addRoutes(router, environment)

	environment.Logger.Info("listening at " + environment.Config.ListenAddr)
	return http.ListenAndServe(environment.Config.ListenAddr, router)
}
