package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/assettrack/assettrack/internal/config"
	"github.com/assettrack/assettrack/internal/db"
	"github.com/assettrack/assettrack/internal/handlers"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/assettrack/assettrack/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, config falls back to real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	go scheduler.Run(
		repo.NewItemRepo(database),
		repo.NewAuditRepo(database),
		time.Duration(cfg.StaleAuditDays)*24*time.Hour,
	)

	router := handlers.NewRouter(database, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.TLSEnabled() {
		slog.Info("listening", "port", cfg.Port, "tls", true)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		slog.Info("listening", "port", cfg.Port, "tls", false)
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
