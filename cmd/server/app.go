package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/config"
	"github.com/mmynk/kanakk/internal/metrics"
	"github.com/mmynk/kanakk/internal/service"
	"github.com/mmynk/kanakk/internal/storage/sqlstore"
	"github.com/mmynk/kanakk/pkg/logging"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *sqlstore.Store
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	accounts *service.AccountService
	ledgers  *service.LedgerService
	entries  *service.EntryService
	sessions *auth.SessionManager
}

func newApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	if cfg.InsecureSecret() {
		logger.Warn("Using the built-in development secret key; set SECRET_KEY in production")
	}

	store, err := sqlstore.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Storage initialized", "driver", store.Driver())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	authenticator := auth.NewPasswordAuthenticator(store, cfg.BcryptCost)
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  m,
		registry: registry,
		accounts: service.NewAccountService(store, authenticator, m, logger),
		ledgers:  service.NewLedgerService(store, logger),
		entries:  service.NewEntryService(store, logger),
		sessions: auth.NewSessionManager(cfg.SecretKey, cfg.SessionTTL),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close storage", "error", err)
	}
}

// seed creates the demo company on an empty database.
func (a *app) seed(ctx context.Context) error {
	created, err := a.accounts.Seed(ctx)
	if err != nil {
		return err
	}
	if created {
		a.logger.Info("Demo company created", "email", service.SeedEmail)
	}
	return nil
}
