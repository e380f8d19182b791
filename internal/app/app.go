// Package app assembles the registration desk from configuration: store,
// payment generator, optional Sheets mirror, service, and HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"regdesk/internal/export"
	"regdesk/internal/payment"
	"regdesk/internal/platform/config"
	"regdesk/internal/platform/database"
	"regdesk/internal/platform/health"
	"regdesk/internal/platform/tracer"
	registranthandler "regdesk/internal/registrant/handler"
	registrantmetrics "regdesk/internal/registrant/metrics"
	registrantservice "regdesk/internal/registrant/service"
	registrantstore "regdesk/internal/registrant/store"
	httptransport "regdesk/internal/transport/http"
	"regdesk/pkg/platform/circuit"
	"regdesk/pkg/platform/middleware/request"
)

type App struct {
	Service *registrantservice.Service
	Router  http.Handler
	Pool    *database.Pool
	// StoreKind is "postgres" or "memory".
	StoreKind string
}

type options struct {
	registry *prometheus.Registry
	tracer   tracer.Tracer
	pool     *database.Pool
}

type Option func(*options)

// WithRegistry isolates metrics in reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithPool reuses an open pool instead of dialing cfg.DatabaseURL.
func WithPool(pool *database.Pool) Option {
	return func(o *options) { o.pool = pool }
}

// New builds the app. With no DATABASE_URL (and no pool) registrants live
// in process memory. Close releases the pool.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	if o.tracer == nil {
		o.tracer = tracer.NewNoop()
	}

	pool := o.pool
	if pool == nil && cfg.DatabaseURL != "" {
		var err error
		pool, err = database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, err
		}
	}

	var (
		store registrantservice.Store
		kind  string
	)
	if pool != nil {
		store = registrantstore.NewPostgres(pool.DB())
		kind = "postgres"
	} else {
		store = registrantstore.NewInMemory()
		kind = "memory"
	}

	svcOpts := []registrantservice.Option{
		registrantservice.WithLogger(logger),
		registrantservice.WithMetrics(registrantmetrics.New(o.registry)),
		registrantservice.WithTracer(o.tracer),
		registrantservice.WithExportLocation(cfg.Export.Location),
	}
	if cfg.Sheets.Enabled() {
		mirror, err := export.NewSheetsMirror(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID, cfg.Sheets.Tab)
		if err != nil {
			pool.Close() //nolint:errcheck // best-effort cleanup on init failure
			return nil, fmt.Errorf("sheets mirror: %w", err)
		}
		breaker := circuit.New("google_sheets")
		svcOpts = append(svcOpts, registrantservice.WithSheetsMirror(export.NewGuardedMirror(mirror, breaker, logger)))
	} else {
		logger.Info("google sheets mirror disabled")
	}

	qr := payment.New(cfg.Payment.PayeeID,
		payment.WithCurrency(cfg.Payment.Currency),
		payment.WithQRSize(cfg.Payment.QRSize),
	)
	svc := registrantservice.New(store, qr, svcOpts...)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", pool.Health)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Gatherer:       o.registry,
		Latency:        request.NewMetrics(o.registry),
	}, logger, healthHandler, registranthandler.New(svc, logger))

	return &App{Service: svc, Router: router, Pool: pool, StoreKind: kind}, nil
}

func (a *App) Close() error {
	return a.Pool.Close()
}
