// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/db"
	"github.com/danielhkuo/feedback-links/handlers"
	"github.com/danielhkuo/feedback-links/logging"
	"github.com/danielhkuo/feedback-links/router"
	"github.com/danielhkuo/feedback-links/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing flags")
	}

	logging.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.DatabaseType).Msg("database connection failed")
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		log.Fatal().Err(err).Msg("schema creation failed")
	}
	log.Info().Str("type", cfg.DatabaseType).Msg("database schema ready")

	s := store.New(dbConn, db.Dialect(cfg.DatabaseType))

	c := openCache(ctx, cfg)
	defer c.Close()

	admin := handlers.NewAdminHandler(s, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), cfg)
	if err := admin.SeedAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin credentials")
	}

	server := &http.Server{
		Handler:           router.NewHandler(s, c, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", server.Addr).Msg("failed to listen")
	}

	log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
	if err := serve(ctx, server, ln); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server closed")
}

// serve runs server on ln until ctx is done, then shuts it down and
// returns only after in-flight requests have drained or shutdownTimeout
// has passed.
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-drained
	return nil
}

// openCache connects to Redis when configured and falls back to process
// memory if it is unreachable.
func openCache(ctx context.Context, cfg cliparse.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info().Msg("using in-memory cache")
		return cache.NewMemory()
	}

	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemory()
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	return r
}
