// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Cervejas & Histórias server.
// It loads configuration, connects to Valkey, wires the remote API client
// into the stores and handlers, and starts the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cervejas/internal/api"
	"cervejas/internal/cache"
	"cervejas/internal/config"
	"cervejas/internal/handlers"
	"cervejas/internal/middleware"
	"cervejas/internal/render"
	"cervejas/internal/router"
	"cervejas/internal/session"
	"cervejas/internal/store"
	"cervejas/internal/view"
	"cervejas/web"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println("Configuration is read from the environment (and an optional .env file):")
		fmt.Println(config.Usage())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"api", cfg.APIBaseURL,
	)

	// Connect to Valkey (sessions and flashes).
	valkey, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkey.Close()

	sessions := session.NewStore(valkey, cfg.SecureCookies)
	flashes := session.NewFlashes(valkey, cfg.SecureCookies)

	// Remote blog API.
	client := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithRateLimit(cfg.APIRateLimit, cfg.APIRateBurst),
		api.WithUserAgent("cervejas/"+version),
	)

	// Category store: initial load. A failure leaves the menu empty until
	// the next refresh; it does not stop the server.
	categories := store.NewCategoryStore(client)
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if cats, err := categories.Refresh(startCtx); err != nil {
		slog.Warn("initial category load failed", "error", err)
	} else {
		slog.Info("categories loaded", "count", len(cats))
	}
	cancelStart()

	query := store.NewPostQuery(client)

	// Live views, swept in the background.
	views := view.NewRegistry(query.Query, categories.Categories(), cfg.LiveViewTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go views.Run(sweepCtx, cfg.LiveViewSweep)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	defer authLimiter.Stop()

	public := handlers.NewPublic(renderer, client, query, categories, views, flashes)

	r := router.New(router.Deps{
		Sessions:      sessions,
		SecureCookies: cfg.SecureCookies,
		AuthLimiter:   authLimiter,
		Valkey:        valkey,
		Static:        web.Static(),
		Public:        public,
		Live:          handlers.NewLive(renderer, views),
		Auth:          handlers.NewAuth(renderer, client, sessions, flashes),
		Admin:         handlers.NewAdmin(renderer, client, categories, flashes),
	})

	// No WriteTimeout: server-sent event streams stay open for as long as
	// the page does.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Closing the views first ends open event streams, which Shutdown
	// would otherwise wait on until the deadline.
	stopSweep()
	views.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Let background view increments and category refreshes finish.
	public.Wait()
	categories.Wait()

	slog.Info("server stopped gracefully")
}
