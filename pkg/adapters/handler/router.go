package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/config"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

// NewRouter creates and configures the main application router.
// deepLinks may be nil when deep link parsing is not configured.
func NewRouter(cfg *config.Config, service ports.LinkService, redirects ports.RedirectService, deepLinks *sdk.Client) http.Handler {
	h := NewHTTPHandler(service, redirects, cfg.RegionHeader)
	dh := NewDeepLinkHandler(deepLinks)
	mw := NewMiddleware(cfg)
	authHandler := NewAuthHandler(cfg)

	redirect := http.Handler(http.HandlerFunc(h.Redirect))
	if cfg.RateLimitRPS > 0 {
		redirect = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(redirect)
	}

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /{short_code}", redirect)
	mux.Handle("GET /open/{short_code}", redirect)
	mux.HandleFunc("GET /api/v1/public/{short_code}", h.GetPublicByShortCode)
	mux.HandleFunc("POST /api/v1/public/{short_code}/resolve", h.ResolvePublic)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes (API & Dashboard)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("GET /api/v1/links/{id}/stats", h.Stats)
	protectedMux.HandleFunc("GET /api/v1/dashboard", h.Dashboard)
	protectedMux.HandleFunc("PUT /api/v1/links/{id}", h.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	protectedMux.HandleFunc("POST /api/v1/deeplinks/parse", dh.Parse)
	protectedMux.HandleFunc("POST /api/v1/deeplinks/build", dh.Build)

	// More specific patterns above win over this prefix
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return RequestLogger(mux)
}
