package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/athena-learn/athena-web/internal/api"
	apiMiddleware "github.com/athena-learn/athena-web/internal/api/middleware"
)

// setupRouter creates the chi router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	cookie := apiMiddleware.SessionCookie{
		Name:   app.config.Server.CookieName,
		Secure: app.config.Server.CookieSecure,
		MaxAge: time.Duration(app.config.Session.TTLHours) * time.Hour,
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.guard)

	authHandler := api.NewAuthHandler(app.accounts, app.guard, cookie, app.logger)
	dashboardHandler := api.NewDashboardHandler(app.resolver)
	courseHandler := api.NewCourseHandler(app.ingestion, app.catalog)
	onboardingHandler := api.NewOnboardingHandler(app.onboarding)

	r.Route("/api", func(r chi.Router) {
		r.Use(cookie.Handler)

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Get("/session", authHandler.Session)
		r.Get("/courses", courseHandler.ListCourses)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireSession)

			r.Get("/dashboard", dashboardHandler.GetDashboard)
			r.Post("/courses/ingest", courseHandler.Ingest)
			r.Get("/onboarding/questions", onboardingHandler.GetQuestions)
			r.Post("/onboarding/answers", onboardingHandler.SubmitAnswers)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
