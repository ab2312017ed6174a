package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/modulehub/modulehub/internal/services"
)

type RouterConfig struct {
	Logger   *slog.Logger
	Auth     *services.AuthService
	Accounts *services.AccountService
	Modules  *services.ModuleService
}

// NewRouter assembles the full HTTP surface.
func NewRouter(cfg RouterConfig) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
	})
	router.Use(secureMiddleware.Handler)

	router.Use(authenticator(cfg.Auth))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	validate := newValidator()

	authHandler := NewAuthHandler(cfg.Logger, cfg.Auth, validate)
	accountHandler := NewAccountHandler(cfg.Logger, cfg.Accounts, cfg.Auth, validate)
	moduleHandler := NewModuleHandler(cfg.Logger, cfg.Modules, validate)

	// Credential endpoints are brute-forceable, keep them rate limited.
	router.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		authHandler.MountRoutes(r)
	})

	accountHandler.MountRoutes(router)
	moduleHandler.MountRoutes(router)

	return router
}
