package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	HealthHandler    *handlers.HealthHandler
	UsersHandler     *handlers.UsersHandler
	WorkspaceHandler *handlers.WorkspaceHandler
	ProjectHandler   *handlers.ProjectHandler
	TaskHandler      *handlers.TaskHandler
	AdminHandler     *handlers.AdminHandler
	RequireJWT       func(http.Handler) http.Handler
	Log              zerolog.Logger
	Secure           func(http.Handler) http.Handler
	IPRateLimit      func(http.Handler) http.Handler
	Metrics          bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(chimid.SetHeader("Content-Type", "application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		// Anonymous routes: token (if any) travels in the body.
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
		// Routes that require a logged-in user.
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Get("/sessions", cfg.AuthHandler.Sessions)
			r.Post("/logout-all", cfg.AuthHandler.LogoutAll)
			r.Post("/update-password", cfg.AuthHandler.UpdatePassword)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/me", cfg.UsersHandler.Me)
	})

	r.Route("/workspaces", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Post("/", cfg.WorkspaceHandler.Create)
		r.Get("/", cfg.WorkspaceHandler.List)
		r.Route("/{workspaceID}", func(r chi.Router) {
			r.Get("/", cfg.WorkspaceHandler.Get)
			r.Put("/", cfg.WorkspaceHandler.Update)
			r.Delete("/", cfg.WorkspaceHandler.Delete)
			r.Get("/members", cfg.WorkspaceHandler.ListMembers)
			r.Post("/members", cfg.WorkspaceHandler.AddMember)
			r.Put("/members/{userID}", cfg.WorkspaceHandler.UpdateMemberRole)
			r.Delete("/members/{userID}", cfg.WorkspaceHandler.RemoveMember)
			r.Get("/projects", cfg.ProjectHandler.ListByWorkspace)
			r.Post("/projects", cfg.ProjectHandler.Create)
		})
	})

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/", cfg.ProjectHandler.Get)
		r.Put("/", cfg.ProjectHandler.Update)
		r.Delete("/", cfg.ProjectHandler.Delete)
		r.Get("/members", cfg.ProjectHandler.ListMembers)
		r.Post("/members", cfg.ProjectHandler.AddMember)
		r.Put("/members/{userID}", cfg.ProjectHandler.UpdateMemberRole)
		r.Delete("/members/{userID}", cfg.ProjectHandler.RemoveMember)
		r.Get("/tasks", cfg.TaskHandler.ListByProject)
		r.Post("/tasks", cfg.TaskHandler.Create)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/mine", cfg.TaskHandler.ListMine)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", cfg.TaskHandler.Get)
			r.Put("/", cfg.TaskHandler.Update)
			r.Patch("/status", cfg.TaskHandler.UpdateStatus)
			r.Delete("/", cfg.TaskHandler.Delete)
		})
	})

	// Admin routes ride the same JWT middleware; the use cases reject
	// non-admin principals.
	r.Route("/admin", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/users", cfg.AdminHandler.ListUsers)
		r.Get("/workspaces", cfg.AdminHandler.ListWorkspaces)
		r.Post("/users/{userID}/ban", cfg.AdminHandler.BanUser)
		r.Post("/users/{userID}/unban", cfg.AdminHandler.UnbanUser)
		r.Post("/users/{userID}/reset-password", cfg.AdminHandler.ResetPassword)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
