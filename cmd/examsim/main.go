package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/edustack/examsim/internal/api/http"
	"github.com/edustack/examsim/internal/audit"
	auth "github.com/edustack/examsim/internal/auth/middleware"
	"github.com/edustack/examsim/internal/config"
	"github.com/edustack/examsim/internal/db"
	"github.com/edustack/examsim/internal/exam"
	"github.com/edustack/examsim/internal/rbac"
	"github.com/edustack/examsim/internal/session"
	"github.com/edustack/examsim/internal/supply"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := exam.NewResultStore(exam.NewSQLKV(dbh), exam.WithReviewThreshold(cfg.ReviewMinAnsweredPct))
	alog := audit.NewLog(dbh)
	sessions := session.NewManager()
	defer sessions.Shutdown()

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	env := api.Env{
		Sessions: sessions,
		Supply:   supply.NewClient(cfg.SupplyBaseURL),
		Store:    store,
		Audit:    alog,
		WarnAt:   cfg.WarnAtSeconds,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("session:create")).
			Post("/sessions", api.CreateSessionHandler(env))
		pr.With(rbac.Require("session:view")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(env))
		pr.With(rbac.Require("session:answer")).
			Post("/sessions/{sessionID}/answers", api.SelectAnswerHandler(env))
		pr.With(rbac.Require("session:answer")).
			Delete("/sessions/{sessionID}/answers/{questionID}", api.ClearAnswerHandler(env))
		pr.With(rbac.Require("session:navigate")).
			Post("/sessions/{sessionID}/navigate", api.NavigateHandler(env))
		pr.With(rbac.Require("session:navigate")).
			Post("/sessions/{sessionID}/mark", api.MarkHandler(env))
		pr.With(rbac.Require("session:finish")).
			Post("/sessions/{sessionID}/finish", api.RequestFinishHandler(env))
		pr.With(rbac.Require("session:finish")).
			Post("/sessions/{sessionID}/finish/confirm", api.ConfirmFinishHandler(env))
		pr.With(rbac.Require("session:finish")).
			Post("/sessions/{sessionID}/finish/decline", api.DeclineFinishHandler(env))
		pr.With(rbac.Require("session:finish")).
			Delete("/sessions/{sessionID}", api.AbandonSessionHandler(env))

		pr.With(rbac.Require("results:view")).
			Get("/results/{examID}", api.GetResultHandler(store))
		pr.With(rbac.Require("review:view")).
			Get("/results/{examID}/review", api.ReviewHandler(store, alog))

		pr.With(rbac.Require("audit:view")).
			Get("/audit/{key}", api.AuditEventsHandler(alog))

		pr.With(rbac.Require("takers:upsert")).
			Post("/takers", api.UpsertTakersHandler(dbh))
		// roster reads: admins directly, proctors through their audit grant
		pr.With(rbac.RequireAny("takers:list", "audit:view")).
			Get("/takers", api.ListTakersHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, supply=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.SupplyBaseURL)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
