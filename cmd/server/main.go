package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/talentoplus/hr-system/docs" // swagger docs

	"github.com/talentoplus/hr-system/internal/api"
	"github.com/talentoplus/hr-system/internal/infrastructure/config"
	mongoinfra "github.com/talentoplus/hr-system/internal/infrastructure/db/mongo"
	redisinfra "github.com/talentoplus/hr-system/internal/infrastructure/db/redis"
	"github.com/talentoplus/hr-system/internal/infrastructure/notify"
	"github.com/talentoplus/hr-system/internal/infrastructure/queue"
	"github.com/talentoplus/hr-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        TalentoPlus HR API
// @version      1.0
// @description  Human-resources API with employee management, JWT authentication and refresh-token sessions.
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongoinfra.NewPrincipalRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("principal indexes failed")
	}
	if err := mongoinfra.NewEmployeeRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("employee indexes failed")
	}

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	dispatcher := queue.NewDispatcher(0, notify.NewLogNotifier(log), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, dispatcher, cfg, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
