// Package server assembles the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"diario/internal/handlers"
	mw "diario/internal/middleware"
)

type RouterOptions struct {
	CORSOrigins    []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func NewRouter(b *Backend, opts RouterOptions, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(b.Accounts, b.Sessions, log)
	userHandler := handlers.NewUserHandler(b.Accounts, b.Records, b.Sessions, log)
	journalHandler := handlers.NewJournalHandler(b.Records, log)
	challengeHandler := handlers.NewChallengeHandler(b.Records, log)
	letterHandler := handlers.NewLetterHandler(b.Records, log)
	mealHandler := handlers.NewMealHandler(b.Records, log)
	progressHandler := handlers.NewProgressHandler(b.Records, log)
	dashboardHandler := handlers.NewDashboardHandler(b.Accounts, b.Records, log)
	migrateHandler := handlers.NewMigrateHandler(b.Records, log)
	authMW := mw.NewAuthMiddleware(b.Sessions, log)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := b.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			if opts.AuthRateLimit > 0 {
				pub.Use(mw.RateLimit(mw.NewRateLimiter(opts.AuthRateLimit, opts.AuthRateWindow), log))
			}
			pub.Post("/auth/signup", authHandler.Signup)
			pub.Post("/auth/login", authHandler.Login)
		})
		api.Get("/catalog/challenges", challengeHandler.Catalog)
		api.Get("/catalog/meals", mealHandler.Catalog)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/auth/logout", authHandler.Logout)
			pr.Get("/session", authHandler.Session)

			pr.Get("/profile", userHandler.GetMe)
			pr.Put("/profile", userHandler.UpdateMe)
			pr.Delete("/profile", userHandler.DeleteMe)

			pr.Put("/journal", journalHandler.UpsertEntry)
			pr.Get("/journal", journalHandler.List)
			pr.Get("/journal/{date}", journalHandler.Get)
			pr.Post("/water", journalHandler.AddWater)

			pr.Get("/challenges", challengeHandler.List)
			pr.Post("/challenges", challengeHandler.Start)
			pr.Post("/challenges/{id}/advance", challengeHandler.Advance)

			pr.Get("/letters", letterHandler.List)
			pr.Post("/letters", letterHandler.Write)
			pr.Post("/letters/{id}/read", letterHandler.Read)

			pr.Get("/meals/{date}", mealHandler.Get)
			pr.Put("/meals/{date}", mealHandler.Put)

			pr.Get("/progress", progressHandler.Get)
			pr.Get("/dashboard", dashboardHandler.Get)
			pr.Post("/migrate", migrateHandler.MigrateData)
			pr.Get("/export", migrateHandler.Export)
		})
	})
	return r
}
