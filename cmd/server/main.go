package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/config"
	"github.com/tavolo-pos/api/internal/logger"
	"github.com/tavolo-pos/api/internal/router"
	"github.com/tavolo-pos/api/internal/session"
	"github.com/tavolo-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	menu, err := catalog.Load(cfg.MenuPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MenuPath).Msg("failed to load menu")
	}

	hub := ws.NewHub()
	go hub.Run()

	sessions := session.NewManager(menu.ResolveModifier)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(cfg, menu, sessions, hub),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
