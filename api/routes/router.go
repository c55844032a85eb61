package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/serviprohq/servipro-backend/api/controllers"
	"github.com/serviprohq/servipro-backend/api/middleware"
	"github.com/serviprohq/servipro-backend/internal/auth"
	"github.com/serviprohq/servipro-backend/internal/contact"
	"github.com/serviprohq/servipro-backend/internal/profile"
	service "github.com/serviprohq/servipro-backend/internal/services"
	"github.com/serviprohq/servipro-backend/pkg/auth/session"
	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/db"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/metrics"
	"github.com/serviprohq/servipro-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             *db.Client
	Redis          *redis.Client
	SessionManager sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	Listings       service.Service
	Profile        profile.Service
	Contact        contact.Notifier
	Metrics        *metrics.HTTPMetrics
	Registry       *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	maxUpload := cfg.Storage.MaxUploadBytes()

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	uploadsDir := http.Dir(cfg.Storage.Root)
	r.Handle(cfg.Storage.PublicPath+"/*", http.StripPrefix(cfg.Storage.PublicPath+"/", http.FileServer(uploadsDir)))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/home", controllers.Home(deps.Listings, logg))
		r.Post("/contact", controllers.ContactSubmit(deps.Contact, logg))
		r.Get("/services", controllers.ServicesList(deps.Listings, logg))
		r.Get("/services/{serviceID}", controllers.ServicesGet(deps.Listings, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

			r.Post("/services", controllers.ServicesCreate(deps.Listings, maxUpload, logg))
			r.Put("/services/{serviceID}", controllers.ServicesUpdate(deps.Listings, maxUpload, logg))
			r.Delete("/services/{serviceID}", controllers.ServicesDelete(deps.Listings, logg))

			r.Route("/my", func(r chi.Router) {
				r.Get("/services", controllers.MyServices(deps.Listings, logg))
				r.Get("/dashboard", controllers.MyDashboard(deps.Listings, logg))
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileShow(deps.Profile, logg))
				r.Put("/", controllers.ProfileUpdate(deps.Profile, logg))
				r.Put("/password", controllers.ProfilePassword(deps.Profile, logg))
				r.Post("/avatar", controllers.AvatarUpload(deps.Profile, maxUpload, logg))
				r.Delete("/avatar", controllers.AvatarDelete(deps.Profile, logg))
			})
		})
	})

	return r
}
