package handler

import (
	"log"
	"net/http"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/shortcode"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/config"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/deeplink"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	service := services.NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength))
	// Functions may be frozen right after the response, so track before returning
	redirects := services.NewRedirectService(repo, deeplink.NewGenerator(cfg.DownloadURL),
		services.WithSyncTracking(),
		services.WithTrackTimeout(cfg.TrackTimeout),
		services.WithIPSalt(cfg.IPHashSalt),
	)

	var client *sdk.Client
	if cfg.DeepLinkEnabled() {
		dlCfg, err := cfg.DeepLink()
		if err != nil {
			panic(err)
		}
		client, err = sdk.NewConfigured(dlCfg, sdk.WithLogger(sdk.NewStdLogger(log.Default())))
		if err != nil {
			panic(err)
		}
	}

	mux = handler.NewRouter(cfg, service, redirects, client)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
