package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"

	"linkbio/pkg/cache"
	"linkbio/pkg/config"
	httphandler "linkbio/pkg/http"
	"linkbio/pkg/ledger"
	"linkbio/pkg/logging"
	"linkbio/pkg/service"
	"linkbio/pkg/storage"
	"linkbio/pkg/store"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// The resolver serves only the public surface: profile pages and click
// tracking. No auth middleware is mounted.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	listenAddr := os.Getenv("RESOLVER_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8081"
	}

	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel))

	// DB connection
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	// Redis connection
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := redis.NewClient(opt)
	defer redisClient.Close()

	// Cache
	profileCache := cache.NewProfileCache(redisClient)

	// Journal
	journal := storage.NewPostgresEventStorage(pool)

	// Ledger + replay
	l := ledger.New(store.Principal(cfg.AdminAddress), store.WithMaxLinksPerProfile(cfg.MaxLinks))
	events, err := journal.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if err := service.Replay(l, events); err != nil {
		log.Fatal(err)
	}

	// Service
	bio := service.NewBioService(l, journal, profileCache, logger)

	// Handler
	handler := httphandler.NewHandler(bio)

	// Router
	r := chi.NewRouter()
	r.Get("/health", handler.HealthCheck)
	r.Get("/u/{username}", handler.PublicProfile)
	r.Post("/l/{id}/click", handler.Click)

	// Server
	log.Println("Starting resolver server on", listenAddr)
	log.Fatal(stdhttp.ListenAndServe(listenAddr, r))
}
