package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/msomdec/photolog/internal/exif"
	"github.com/msomdec/photolog/internal/handler"
	"github.com/msomdec/photolog/internal/repository/sqlite"
	"github.com/msomdec/photolog/internal/service"
	"github.com/msomdec/photolog/internal/store"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// Optional .env for local development; missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug(".env loaded")
	}

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "photolog.db")

	confirmTTL := 5 * time.Minute
	if v := os.Getenv("CONFIRM_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid CONFIRM_TTL", "error", err)
			os.Exit(1)
		}
		confirmTTL = parsed
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	catalogStore := store.New()
	confirms := service.NewConfirmBroker(confirmTTL)
	defer confirms.Close()

	catalog := service.NewCatalogService(catalogStore, db.KV(), exif.Extractor{}, confirms)
	if err := catalog.Hydrate(context.Background()); err != nil {
		slog.Error("failed to hydrate catalog", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, catalog, confirms, catalogStore)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Let the last persistence write land before the process exits.
	catalog.Close()
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
