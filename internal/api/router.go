package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"palmchat-backend/internal/config"
	"palmchat-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	SlackWebhookHandler *handlers.SlackWebhookHandlers
	Config              *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*.slack.com"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Slack-Signature", "X-Slack-Request-Timestamp"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Slack posts events (including the initial URL verification) here;
	// signature verification inside the handler secures the route.
	if deps.SlackWebhookHandler == nil {
		panic("SlackWebhookHandler dependency is nil in router setup")
	}
	r.Route("/slack", func(r chi.Router) {
		r.Post("/events", deps.SlackWebhookHandler.HandleSlackEvent)
	})

	return r
}
