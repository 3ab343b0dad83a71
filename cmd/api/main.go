package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rahulmenon/billstack-backend/api/routes"
	"github.com/rahulmenon/billstack-backend/internal/analytics"
	"github.com/rahulmenon/billstack-backend/internal/customers"
	"github.com/rahulmenon/billstack-backend/internal/inventory"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/internal/offline"
	"github.com/rahulmenon/billstack-backend/internal/profiles"
	"github.com/rahulmenon/billstack-backend/internal/stocklog"
	"github.com/rahulmenon/billstack-backend/pkg/config"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/kv"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
	"github.com/rahulmenon/billstack-backend/pkg/migrate"
	"github.com/rahulmenon/billstack-backend/pkg/pubsub"
	"github.com/rahulmenon/billstack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, ctx, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(logg, ctx, "failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(logg, ctx, "failed to run dev migrations", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			fatal(logg, ctx, "failed to bootstrap redis", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	met := metrics.NewLedgerMetrics(registry)

	var queueStore kv.Store
	if cfg.Sync.QueueBackend == "redis" && redisClient != nil {
		queueStore, err = kv.NewRedisStore(redisClient)
	} else {
		queueStore, err = kv.NewFileStore(cfg.Sync.QueueDir)
	}
	if err != nil {
		fatal(logg, ctx, "failed to open offline queue store", err)
	}

	var publisher stocklog.EventPublisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			fatal(logg, ctx, "failed to bootstrap pubsub", err)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}()
		publisher = psClient
	}

	stockLogRepo := stocklog.NewRepository(dbClient.DB())
	sink, err := stocklog.NewSink(stockLogRepo, publisher, logg, met, cfg.StockLog)
	if err != nil {
		fatal(logg, ctx, "failed to start stock log sink", err)
	}
	defer sink.Close()

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, sink)
	if err != nil {
		fatal(logg, ctx, "failed to create inventory service", err)
	}
	depleter, err := inventory.NewDepleter(inventoryRepo)
	if err != nil {
		fatal(logg, ctx, "failed to create depleter", err)
	}

	invoiceService, err := invoices.NewService(invoices.NewRepository(dbClient.DB()), dbClient, depleter, sink, met)
	if err != nil {
		fatal(logg, ctx, "failed to create invoice service", err)
	}

	stockLogService, err := stocklog.NewService(stockLogRepo)
	if err != nil {
		fatal(logg, ctx, "failed to create stock log service", err)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, ctx, "failed to create analytics service", err)
	}

	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, ctx, "failed to create customer service", err)
	}

	profileService, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, ctx, "failed to create profile service", err)
	}

	queue, err := offline.NewQueue(queueStore, met)
	if err != nil {
		fatal(logg, ctx, "failed to create offline queue", err)
	}

	syncer, err := offline.NewSyncer(queue, invoiceService, logg, met)
	if err != nil {
		fatal(logg, ctx, "failed to create syncer", err)
	}

	monitor, err := offline.NewMonitor(dbClient, cfg.Sync, logg, met)
	if err != nil {
		fatal(logg, ctx, "failed to create connectivity monitor", err)
	}

	// Reconnecting drains the offline queue automatically; clients can also
	// trigger a pass through POST /api/v1/sync.
	monitor.Subscribe(func(state offline.State) {
		if state != offline.StateConnected {
			return
		}
		result, err := syncer.ReplayQueue(context.Background(), uuid.Nil)
		if err != nil {
			logg.Error(context.Background(), "offline replay failed", err)
			return
		}
		rctx := logg.WithFields(context.Background(), map[string]any{
			"replayed":  result.Replayed,
			"failed":    result.Failed,
			"remaining": result.Remaining,
		})
		logg.Info(rctx, "offline queue replayed")
	})
	monitor.Start(ctx)
	defer monitor.Stop()

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	handler := routes.NewRouter(cfg, logg, dbClient, redisP, registry, routes.Services{
		Inventory: inventoryService,
		Invoices:  invoiceService,
		StockLog:  stockLogService,
		Analytics: analyticsService,
		Customers: customerService,
		Profiles:  profileService,
		Queue:     queue,
		Syncer:    syncer,
		Monitor:   monitor,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	sctx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(sctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logg, sctx, "api server stopped unexpectedly", err)
		}
	case <-stop:
		logg.Info(sctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(sctx, "graceful shutdown failed", err)
		}
	}
}

func fatal(logg *logger.Logger, ctx context.Context, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
