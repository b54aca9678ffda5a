package main

import (
	"context"
	"log"
	stdhttp "net/http"

	"linkbio/pkg/cache"
	"linkbio/pkg/config"
	"linkbio/pkg/http"
	"linkbio/pkg/ledger"
	"linkbio/pkg/logging"
	"linkbio/pkg/middleware"
	"linkbio/pkg/service"
	"linkbio/pkg/storage"
	"linkbio/pkg/store"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
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

	// Auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Secret:   cfg.JWTSecret,
		Audience: "linkbio",
	})
	if err != nil {
		log.Fatal("Failed to create auth middleware:", err)
	}

	// Handler
	handler := http.NewHandler(bio)

	// Router
	r := chi.NewRouter()
	http.SetupRoutes(r, handler, authMiddleware)

	// Server
	log.Println("Starting API server on", cfg.ListenAddr)
	log.Fatal(stdhttp.ListenAndServe(cfg.ListenAddr, r))
}
