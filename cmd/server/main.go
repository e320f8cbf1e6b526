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

	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/config"
	"github.com/nberthet/depotvente/internal/httpx"
	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/ledger"
	"github.com/nberthet/depotvente/internal/report"
	"github.com/nberthet/depotvente/internal/storage/sqlite"
	"github.com/nberthet/depotvente/internal/users"
	"github.com/nberthet/depotvente/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	inv := inventory.NewManager(store)
	server := &httpx.Server{
		Inventory: inv,
		Users:     users.NewService(store),
		Ledger:    ledger.NewEngine(store, inv),
		Reports:   report.NewGenerator(store),
		Auth:      auth.NewAuthenticator(store, tokens, cfg.OwnerPassHash),
		Tokens:    tokens,
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router()}

	go func() {
		slog.Info("Server starting", "address", cfg.HTTPAddr, "service", cfg.ServiceName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
