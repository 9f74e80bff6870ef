package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/tierzen/internal/api"
	"github.com/meur/tierzen/internal/config"
	"github.com/meur/tierzen/internal/logging"
	"github.com/meur/tierzen/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		configPath string
		port       string
		dbPath     string
	)

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Run the TierZen API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty, os.Stderr)

			return serve(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ./tierzen.toml)")
	rootCmd.Flags().StringVar(&port, "port", "8080", "server port")
	rootCmd.Flags().StringVar(&dbPath, "db", "./tierzen.db", "SQLite database path")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize storage")
		return err
	}
	defer store.Close()

	srv := api.New(store, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Deadband:       cfg.Drag.Deadband,
	})

	// Serve frontend static files (for production deployment)
	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		FileServer(srv.Router(), "/", http.Dir(cfg.Server.StaticDir))
	} else {
		log.Info().Str("static_dir", cfg.Server.StaticDir).Msg("No frontend build found, serving API only")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://localhost:"+cfg.Server.Port).
			Str("database", cfg.Database.Path).
			Msg("TierZen API starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}
	return nil
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
