// Main entry point for the go-skydata service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-skydata/internal/clients"
	"go-skydata/internal/config"
	"go-skydata/internal/handlers"
	"go-skydata/internal/logger"
	"go-skydata/internal/metrics"
	"go-skydata/internal/normalize"
	"go-skydata/internal/repo"
	"go-skydata/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wired object graph shared by every command
type app struct {
	cfg      *config.AppConfig
	log      logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	space    *services.SpaceService
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	httpClient := clients.NewHTTPClient(
		clients.WithTimeout(cfg.HTTPTimeout),
		clients.WithRatePerHour(cfg.RatePerHour),
	)
	nasaClient := clients.NewNasaClient(cfg.NasaAPIURL, cfg.NasaAPIKey, httpClient, m)
	space := services.NewSpaceService(nasaClient, normalize.New(log, m), log)

	return &app{cfg: cfg, log: log, registry: reg, metrics: m, space: space}, nil
}

// serve runs the HTTP surface and, when a database is configured, the snapshot sync
func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var syncer *services.SyncService
	if a.cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		a.log.Info("Database connection pool established")

		if err := repo.InitDB(ctx, pool); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		a.log.Info("Database schema initialized")

		syncer = services.NewSyncService(a.space, repo.NewSnapshotRepo(pool), a.log, a.metrics)
		if a.cfg.SyncEnabled {
			if err := syncer.Start(ctx, a.cfg.FetchInterval.BySource()); err != nil {
				return err
			}
			defer syncer.Stop()
		}
	} else {
		a.log.Info("DATABASE_URL not set, snapshot archive disabled")
	}

	if !a.cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.NewHandler(a.space, syncer, a.log, a.registry))
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("go-skydata service listening", logger.String("addr", a.cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
