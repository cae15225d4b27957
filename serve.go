package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/zenboard/board"
	"github.com/CrowderSoup/zenboard/config"
	"github.com/CrowderSoup/zenboard/handlers"
	"github.com/CrowderSoup/zenboard/services"
)

func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, store, closeFn, err := openStore(cmd, load)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, store)
		},
	}
}

// newHandler assembles the services and routes around store. The hub runs
// until ctx is done.
func newHandler(ctx context.Context, cfg *config.Config, store *board.Store) http.Handler {
	// Initialize WebSocket hub
	var hub *services.Hub
	metrics := services.NewMetrics(func() int { return hub.Clients() })
	dispatcher := services.NewDispatcher(store, metrics)
	hub = services.NewHub(dispatcher.ActionFunc())
	go hub.Run(ctx)

	hub.Follow(store)
	metrics.ObserveViews(store.Views())
	store.Subscribe(func(ev board.Event) { metrics.ObserveViews(ev.Views) })

	// Initialize services
	authService := services.NewAuthService(cfg.Auth)
	if !authService.Enabled() {
		log.Warn("BOARD_PASSPHRASE is not set, the API is open to anyone who can reach it")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	dataHandler := handlers.NewDataHandler(store, dispatcher, hub, cfg.CORS.AllowedOrigins)
	var static http.Handler
	if cfg.Server.StaticDir != "" {
		static = handlers.StaticFiles(cfg.Server.StaticDir, cfg.Storage.SQLitePath)
	}
	r := handlers.NewRouter(dataHandler, authHandler, handlers.NewAuthMiddleware(authService), metrics.Handler(), static)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

func serve(ctx context.Context, cfg *config.Config, store *board.Store) error {
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newHandler(ctx, cfg, store),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
