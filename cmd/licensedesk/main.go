package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/raghavbhatia332/licensedesk/internal/adapter/googleid"
	ldhttp "github.com/raghavbhatia332/licensedesk/internal/adapter/http"
	ldnats "github.com/raghavbhatia332/licensedesk/internal/adapter/nats"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/natskv"
	ldotel "github.com/raghavbhatia332/licensedesk/internal/adapter/otel"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/postgres"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/ristretto"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/tiered"
	"github.com/raghavbhatia332/licensedesk/internal/adapter/ws"
	"github.com/raghavbhatia332/licensedesk/internal/config"
	"github.com/raghavbhatia332/licensedesk/internal/logger"
	"github.com/raghavbhatia332/licensedesk/internal/middleware"
	"github.com/raghavbhatia332/licensedesk/internal/port/identity"
	"github.com/raghavbhatia332/licensedesk/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"auth_enabled", cfg.Auth.Enabled,
		"telemetry_enabled", cfg.Telemetry.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	var metrics *ldotel.Metrics
	if cfg.Telemetry.Enabled {
		shutdown, err := ldotel.Init(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("telemetry shutdown", "error", err)
			}
		}()

		metrics, err = ldotel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	feed, err := ldnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = feed.Close() }()
	slog.Info("nats connected")

	// Token cache: process-local ristretto in front of a shared NATS KV
	// bucket so replicas do not re-verify each other's tokens.
	local, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("token cache: %w", err)
	}
	kv, err := feed.KeyValue(ctx, "idtokens", cfg.Cache.TokenTTL)
	if err != nil {
		return fmt.Errorf("token kv bucket: %w", err)
	}
	tokenCache := tiered.New(local, natskv.New(kv), cfg.Cache.TokenTTL)
	defer tokenCache.Close()

	// --- Identity ---
	var verifier identity.Verifier
	if cfg.Auth.Enabled {
		verifier = googleid.NewCached(
			googleid.New(cfg.Auth.GoogleClientID),
			tokenCache,
			cfg.Cache.TokenTTL,
		)
	}

	// --- Services ---
	store := postgres.NewStore(pool)
	hub := ws.NewHub()

	gate := service.NewGate(store, verifier, &cfg.Auth)
	licenseSvc := service.NewLicenseService(store, feed)
	allowlistSvc := service.NewAllowlistService(store, feed, &cfg.Auth)
	settingsSvc := service.NewSettingsService(store, feed)
	forwarder := service.NewForwarder(store, feed, hub, slog.Default())

	gate.StartSweeper(ctx)

	// --- HTTP ---
	handlers := ldhttp.NewHandlers(licenseSvc, allowlistSvc, settingsSvc, gate, hub, metrics)

	r := chi.NewRouter()
	r.Use(ldhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(ldhttp.Logger)
	r.Use(ldhttp.SecurityHeaders)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Telemetry.Enabled {
		r.Use(ldotel.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.Auth(gate, cfg.Auth.Enabled, cfg.Auth.MasterEmail))

	ldhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := forwarder.Run(gctx); err != nil {
			return fmt.Errorf("forwarder: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
