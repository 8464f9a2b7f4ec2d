package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"morak/internal/security"
)

// Routes mounts the group endpoints
func (h *GroupsHandler) Routes(mw *Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetAllGroups)
	r.Get("/{id}", h.GetGroup)
	r.Get("/{id}/members", h.GetAllMembersOfGroup)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireMember)
		pr.Get("/my-groups", h.GetMyGroups)
		pr.Get("/access-code/{accessCode}", h.GetGroupByAccessCode)
		pr.Post("/", h.CreateGroup)
		pr.Post("/{id}/join", h.JoinGroup)
		pr.Post("/access-code/{accessCode}/join", h.JoinGroupByAccessCode)
		pr.Delete("/{id}/leave", h.LeaveGroup)
		pr.Delete("/{id}/kick/{memberId}", h.KickOutMember)
	})

	return r
}

// Routes mounts the member endpoints
func (h *MemberHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.GetMe)
	return r
}

// Routes mounts the auth endpoints behind the rate limiter
func (h *AuthHandler) Routes(limiter *security.RateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(RateLimit(limiter, h.logger))

	r.Get("/{provider}/start", h.StartOAuth)
	r.Get("/{provider}/callback", h.OAuthCallback)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	return r
}

// Routes mounts the mogaco endpoints
func (h *MogacoHandler) Routes(mw *Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListByMonth)
	r.Get("/{id}", h.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireMember)
		pr.Post("/", h.Create)
		pr.Delete("/{id}", h.Delete)
	})

	return r
}

// RouterDeps are the pieces NewRouter wires together
type RouterDeps struct {
	Groups         *GroupsHandler
	Members        *MemberHandler
	Auth           *AuthHandler
	Mogaco         *MogacoHandler
	Health         *HealthHandler
	Middleware     *Middleware
	AuthLimiter    *security.RateLimiter
	AllowedOrigins []string
	TrustProxy     bool // rewrite RemoteAddr from X-Forwarded-For / X-Real-IP
	Logger         *zap.Logger
}

// NewRouter builds the application's HTTP handler
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(Logging(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, d.Logger, http.StatusNotFound, "Not found", "", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, d.Logger, http.StatusMethodNotAllowed, "Method not allowed", "", nil)
	})

	r.Get("/health", d.Health.Health)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/groups", d.Groups.Routes(d.Middleware))
		api.Mount("/member", d.Members.Routes())
		api.Mount("/auth", d.Auth.Routes(d.AuthLimiter))
		api.Mount("/mogaco", d.Mogaco.Routes(d.Middleware))
	})

	return r
}
