package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"ultrachat-backend/internal/handlers"
	"ultrachat-backend/internal/middleware"
)

func New(
	sessionAuth *middleware.SessionAuth,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	chatHandler *handlers.ChatHandler,
	log logrus.FieldLogger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(sessionAuth.Middleware)
	r.Use(middleware.RequestLogger(log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", dashboardHandler.Index)

	// ──── Auth Routes (public) ────
	r.Get("/register", authHandler.RegisterPage)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// ──── Dashboard ────
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/dashboard", dashboardHandler.Show)
	})

	// ──── Chat ────
	// Anonymous callers get a JSON error rather than a redirect.
	r.Post("/chat", chatHandler.Send)

	return r
}
