package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"duitsplit/internal/auth"
	"duitsplit/internal/config"
	"duitsplit/internal/server"
	"duitsplit/internal/storage/sqlite"
	"duitsplit/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var opts []server.Option
	if cfg.JWTSecret != "" {
		opts = append(opts, server.WithJWT(auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)))
		slog.Info("Bearer token authentication enabled")
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		opts = append(opts, server.WithRateLimit(client, cfg.RateLimitRPM))
		slog.Info("Rate limiting enabled", "redis", cfg.RedisAddr, "rpm", cfg.RateLimitRPM)
	}

	srv := server.New(store, opts...)

	// h2c allows HTTP/2 without TLS for clients that want it; plain
	// HTTP/1.1 keeps working.
	handler := h2c.NewHandler(srv.Router(), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
