package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/repository/memory"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/shortcode"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/config"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/deeplink"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

func main() {
	inMemory := flag.Bool("memory", false, "Keep links in memory instead of DATABASE_URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var repo ports.LinkRepository
	if *inMemory {
		log.Println("Using in-memory repository; links are lost on restart")
		repo = memory.NewRepository()
	} else {
		sqlRepo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer sqlRepo.Close()
		repo = sqlRepo
	}

	service := services.NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength))
	redirects := services.NewRedirectService(repo, deeplink.NewGenerator(cfg.DownloadURL),
		services.WithTrackTimeout(cfg.TrackTimeout),
		services.WithIPSalt(cfg.IPHashSalt),
	)

	mux := handler.NewRouter(cfg, service, redirects, newDeepLinkClient(cfg))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	// let pending click tracking reach the database
	redirects.Wait()
	log.Println("Server stopped")
}

// newDeepLinkClient returns nil when deep link parsing is not configured
func newDeepLinkClient(cfg *config.Config) *sdk.Client {
	if !cfg.DeepLinkEnabled() {
		return nil
	}
	dlCfg, err := cfg.DeepLink()
	if err != nil {
		log.Fatalf("Invalid deep link configuration: %v", err)
	}
	client, err := sdk.NewConfigured(dlCfg, sdk.WithLogger(sdk.NewStdLogger(log.Default())))
	if err != nil {
		log.Fatalf("Failed to configure deep link client: %v", err)
	}
	return client
}
