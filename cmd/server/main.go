package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avasilyev/pokedex-api/internal/config"
	"github.com/avasilyev/pokedex-api/internal/es"
	"github.com/avasilyev/pokedex-api/internal/events"
	"github.com/avasilyev/pokedex-api/internal/handlers"
	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/logging"
	authmw "github.com/avasilyev/pokedex-api/internal/middleware/auth"
	loggingmw "github.com/avasilyev/pokedex-api/internal/middleware/logging"
	"github.com/avasilyev/pokedex-api/internal/middleware/usagelog"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/seed"
	"github.com/avasilyev/pokedex-api/internal/service/search"
	"github.com/avasilyev/pokedex-api/internal/token"
	httpserver "github.com/avasilyev/pokedex-api/internal/transport/http"
)

const accessTokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	users := &repo.UserRepo{DB: db}
	pokemons := &repo.PokemonRepo{DB: db}
	usageLogs := &repo.UsageLogRepo{DB: db}
	errorLogs := &repo.ErrorLogRepo{DB: db}

	ctx := context.Background()
	if err := seed.EnsureAdmin(ctx, users); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}
	if cfg.SEED_POKEMONS == "true" {
		n, err := seed.Pokemons(ctx, pokemons, seed.PokedexURL)
		if err != nil {
			log.Fatalf("pokedex seed error: %v", err)
		}
		logger.Info("pokedex seeded", "inserted", n)
	}

	accessSigner := token.NewSigner([]byte(cfg.ACCESS_TOKEN_SECRET), accessTokenTTL)
	refreshSigner := token.NewSigner([]byte(cfg.REFRESH_TOKEN_SECRET), 0)
	registry := token.NewRegistry(refreshSigner)

	producer := &events.Producer{}
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{cfg.KAFKA_ADDRESS}, cfg.KAFKA_TOPIC)
	}

	searchHandler := &handlers.SearchHandler{Index: search.DefaultIndex}
	if cfg.ES_URL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
		searchHandler.ES = client
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.HTTPErrorHandler = httperr.Handler(errorLogs)

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Users:    users,
			Access:   accessSigner,
			Refresh:  refreshSigner,
			Registry: registry,
			Producer: producer,
		},
		PokemonHandler: &handlers.PokemonHandler{
			Pokemons: pokemons,
			Producer: producer,
			ES:       searchHandler.ES,
			Index:    searchHandler.Index,
		},
		ReportHandler: &handlers.ReportHandler{Usage: usageLogs, Errors: errorLogs},
		SearchHandler: searchHandler,
		Guard:         &authmw.Guard{Users: users, Access: accessSigner},
		UsageLogger:   usagelog.Middleware(usageLogs, accessSigner),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
