package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	addressmetrics "cepbook/internal/address/metrics"
	addressservice "cepbook/internal/address/service"
	"cepbook/internal/address/store"
	"cepbook/internal/cep"
	cepmetrics "cepbook/internal/cep/metrics"
	"cepbook/internal/platform/config"
	"cepbook/internal/platform/database"
	"cepbook/internal/platform/health"
	"cepbook/internal/platform/httpserver"
	"cepbook/internal/platform/logger"
	"cepbook/internal/register"
	registermetrics "cepbook/internal/register/metrics"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing cepbook",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	healthHandler := health.New(cfg.Environment)

	// Record store selection: Postgres when a database is configured, the
	// JSON blob file when a path is given, memory otherwise.
	var records addressservice.RecordStore
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	switch {
	case pool != nil:
		defer pool.Close()
		if err := pool.Migrate(context.Background()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		records = store.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		log.Info("using postgres record store")
	case cfg.DataFile != "":
		records = store.NewFile(cfg.DataFile, log)
		log.Info("using file record store", "path", cfg.DataFile)
	default:
		records = store.NewInMemory()
		log.Warn("using in-memory record store, records are lost on restart")
	}

	recordService := addressservice.New(records,
		addressservice.WithLogger(log),
		addressservice.WithMetrics(addressmetrics.New()),
	)

	lookupClient := cep.NewClient(cfg.LookupBaseURL, cfg.LookupTimeout,
		cep.WithLogger(log),
		cep.WithMetrics(cepmetrics.New()),
	)
	healthHandler.RegisterCheck("lookup", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return lookupClient.Health(ctx)
	})

	sessions := register.NewManager(lookupClient, recordService,
		register.WithLogger(log),
		register.WithMetrics(registermetrics.New()),
		register.WithSessionTTL(cfg.SessionTTL),
	)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessions.StartJanitor(janitorCtx, 5*time.Minute)

	router := newRouter(log, recordService, lookupClient, sessions, healthHandler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
