package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/famfin/famfin-api/internal/config"
	"github.com/famfin/famfin-api/internal/domain/account"
	"github.com/famfin/famfin-api/internal/domain/chore"
	"github.com/famfin/famfin-api/internal/domain/credit"
	"github.com/famfin/famfin-api/internal/domain/ledger"
	"github.com/famfin/famfin-api/internal/domain/request"
	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/middleware"
	"github.com/famfin/famfin-api/internal/pkg/cache"
	"github.com/famfin/famfin-api/internal/pkg/database"
	"github.com/famfin/famfin-api/internal/pkg/jwt"
	"github.com/famfin/famfin-api/internal/pkg/logger"
	pkgresponse "github.com/famfin/famfin-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Starting FamFin API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Redis configuration")
	}
	defer database.CloseRedis(redisClient)

	// A missing Redis leaves the cache without a store: every read goes to Postgres.
	var store cache.Store
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient)
	}
	viewCache := cache.New(store, cfg.Cache.Enabled, cache.TTLs{
		Chores:           cfg.Cache.ChoresTTL,
		Requests:         cfg.Cache.RequestsTTL,
		Wallet:           cfg.Cache.WalletTTL,
		Members:          cfg.Cache.MembersTTL,
		CardApplications: cfg.Cache.CardApplicationsTTL,
	})

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	tx := database.NewTransactor(db)

	// ---------- Services ----------
	userService := user.NewService(user.NewRepository(db), viewCache)
	accountStore := account.NewStore(account.NewRepository(db))
	ledgerService := ledger.NewService(ledger.NewRepository(db), accountStore, userService, tx, viewCache)
	creditService := credit.NewService(credit.NewRepository(db), userService, tx, viewCache)
	choreService := chore.NewService(chore.NewRepository(db), userService, ledgerService, tx, viewCache)
	requestService := request.NewService(request.NewRepository(db), ledgerService, tx, viewCache)

	r := newRouter(cfg, routes{
		auth:     middleware.Auth(jwtService),
		family:   user.NewHandler(userService),
		ledger:   ledger.NewHandler(ledgerService),
		credit:   credit.NewHandler(creditService),
		chores:   chore.NewHandler(choreService),
		requests: request.NewHandler(requestService),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routes struct {
	auth     func(http.Handler) http.Handler
	family   *user.Handler
	ledger   *ledger.Handler
	credit   *credit.Handler
	chores   *chore.Handler
	requests *request.Handler
}

func newRouter(cfg *config.Config, h routes) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	parentOnly := middleware.RequireParent()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/family", h.family.Routes(h.auth))
		r.Mount("/ledger", h.ledger.Routes(h.auth, parentOnly))
		r.Mount("/credit", h.credit.Routes(h.auth, parentOnly))
		r.Mount("/chores", h.chores.Routes(h.auth, parentOnly))
		r.Mount("/requests", h.requests.Routes(h.auth, parentOnly))
	})

	return r
}
