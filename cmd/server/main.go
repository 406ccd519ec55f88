package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/gridironhq/site-content/internal/api"
	"github.com/gridironhq/site-content/pkg/sitecontent"
	"github.com/gridironhq/site-content/pkg/sitecontent/audit"
	"github.com/gridironhq/site-content/pkg/sitecontent/config"
)

func main() {
	var cfg config.ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	// The proxy and the writer share one store so admin writes are visible
	// to public reads immediately.
	store, err := cfg.BuildObjectStore()
	if err != nil {
		slog.Error("Failed to build object store", "err", err)
		os.Exit(1)
	}

	options := []sitecontent.Option{sitecontent.WithObjectStore(store)}
	if cfg.DatabaseURL != "" {
		repo, err := cfg.BuildAuditRepository()
		if err != nil {
			slog.Error("Failed to connect audit database", "err", err)
			os.Exit(1)
		}
		options = append(options, sitecontent.WithAuditLog(repo))
	} else {
		options = append(options, sitecontent.WithAuditLog(audit.NewMemory()))
	}

	service, err := sitecontent.New(options...)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	r.Get("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})

	// Public read surface
	r.Mount(cfg.ProxyPrefix, api.NewProxyHandler(store, cfg.PublicBaseURL).Routes())
	r.Mount("/api/manifests", api.NewManifestHandler(service).Routes())
	r.Get("/api/season", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]int{"season": sitecontent.CurrentSeason(time.Now())})
	})

	// Admin write surface
	verifier := api.NewJWTVerifier(cfg.JWTSecret)
	r.Route("/api/content", func(r chi.Router) {
		r.Use(api.RequireAdmin(verifier, cfg.Allowlist()))
		r.Mount("/", api.NewContentHandler(service).Routes())
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "storage", cfg.StorageType, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "err", err)
	}
}
