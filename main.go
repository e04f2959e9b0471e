package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"streamverse/api"
	"streamverse/config"
	"streamverse/handlers"
	"streamverse/internal/ttlcache"
	"streamverse/services/assistant"
	"streamverse/services/catalog"
	"streamverse/services/sports"
	"streamverse/services/watchlist"
	"streamverse/utils"
)

func main() {
	cfg := config.FromEnv()

	catalogCache := ttlcache.New(cfg.CacheTTL)
	catalogSvc := catalog.NewService(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.Language, nil, catalogCache)
	aggregator := sports.NewAggregator(cfg.SportsBaseURL, nil, nil, nil)
	resolver := sports.NewResolver(cfg.SportsBaseURL, nil)
	assistantSvc := assistant.NewService(cfg.GeminiAPIKey, "", nil)

	watchlistSvc, err := watchlist.NewService(filepath.Join(cfg.DataDir, "watchlist"))
	if err != nil {
		log.Fatalf("[main] watchlist init failed: %v", err)
	}

	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	sportsHandler := handlers.NewSportsHandler(aggregator, resolver)
	assistantHandler := handlers.NewAssistantHandler(assistantSvc)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistSvc)

	r := utils.NewRouter()

	r.HandleFunc("/api/catalog/{operation}", catalogHandler.Query).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/browse/{operation}", catalogHandler.Browse).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/api/sports/matches", sportsHandler.Matches).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/sports/sections", sportsHandler.Sections).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/sports/streams", sportsHandler.Streams).Methods(http.MethodPost, http.MethodOptions)

	// The assistant fronts a metered upstream; 10 requests per minute per IP.
	chatLimiter := api.NewIPRateLimiter(rate.Every(6*time.Second), 10)
	r.Handle("/api/assistant/chat", api.RateLimit(chatLimiter, http.HandlerFunc(assistantHandler.Chat))).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/api/users/{userID}/watchlist", watchlistHandler.List).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/users/{userID}/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userID}/watchlist/{mediaType}/{id}", watchlistHandler.UpdateState).Methods(http.MethodPatch, http.MethodOptions)
	r.HandleFunc("/api/users/{userID}/watchlist/{mediaType}/{id}", watchlistHandler.Remove).Methods(http.MethodDelete)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[main] listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
